package perf

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/birch/cmd/util"
	"github.com/ValentinKolb/birch/lib/schema"
	"github.com/ValentinKolb/birch/lib/serializer"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Logger = logger.GetLogger("perf")

	PerfCmd = &cobra.Command{
		Use:   "perf",
		Short: "Benchmark the serialization engine in-process",
		Long: `Benchmark serialize and deserialize throughput over representative value
shapes (primitives, strings, byte slices, containers and nested structs). No
network or server is involved, the codecs run in-process.`,
		RunE:    run,
		PreRunE: processPerfConfig,
	}

	perfLargeValueSizeKB = 16
	perfSkip             = make([]string, 0)
)

// benchmark workload shapes
type perfAddress struct {
	Street string
	City   string
	Zip    uint32
}

type perfUser struct {
	Name    string
	Age     uint8
	Active  bool
	Tags    []string
	Ratings map[string]float64
	Home    perfAddress
}

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitCLIConfig)

	// add flags
	key := "skip"
	PerfCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. bytes,struct/serialize)"))

	key = "large-value-size"
	PerfCmd.Flags().Int(key, 16, util.WrapString("How large the value for the bytes benchmark should be (in KB)"))

	key = "csv"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// configure logging
	util.InitLoggers(viper.GetString("log-level"))

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for the birch serialization engine")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("Bytes workload size: %d KB\n", perfLargeValueSizeKB)
	fmt.Println()

	fmt.Println("starting benchmarks...")

	ld, err := newPerfLoader()
	if err != nil {
		return fmt.Errorf("failed to set up loader: %v", err)
	}

	// Create results map
	timers := metrics.NewRegistry()
	results := make(map[string]testing.BenchmarkResult)
	order := make([]string, 0)

	names, values := workloads()

	for _, name := range names {
		v := values[name]

		// encode pass
		test := name + "/serialize"
		serializeResult := testing.Benchmark(func(b *testing.B) {
			if shouldSkip(test) {
				return
			}

			timer := metrics.GetOrRegisterTimer(test, timers)

			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				start := time.Now()
				if _, err := ld.Serialize(v); err != nil {
					Logger.Errorf("(%s) - error serializing value: %v", test, err)
					return
				}
				timer.UpdateSince(start)
			}
		})

		results[test] = serializeResult
		order = append(order, test)
		printResult(test, serializeResult, metrics.GetOrRegisterTimer(test, timers))

		// decode pass
		data, err := ld.Serialize(v)
		if err != nil {
			return fmt.Errorf("failed to prepare %s payload: %v", name, err)
		}
		target := reflect.New(reflect.TypeOf(v)).Interface()

		test = name + "/deserialize"
		deserializeResult := testing.Benchmark(func(b *testing.B) {
			if shouldSkip(test) {
				return
			}

			timer := metrics.GetOrRegisterTimer(test, timers)

			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				start := time.Now()
				if err := ld.Deserialize(data, target); err != nil {
					Logger.Errorf("(%s) - error deserializing value: %v", test, err)
					return
				}
				timer.UpdateSince(start)
			}
		})

		results[test] = deserializeResult
		order = append(order, test)
		printResult(test, deserializeResult, metrics.GetOrRegisterTimer(test, timers))
	}

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, order, results, timers); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// newPerfLoader builds a loader with the benchmark types registered
func newPerfLoader() (*serializer.Loader, error) {
	schemas := schema.NewRegistry()
	if _, err := schemas.Register(perfUser{}); err != nil {
		return nil, err
	}

	return serializer.NewLoader(&serializer.LoaderOptions{Schemas: schemas}), nil
}

// workloads returns the named benchmark values in a stable order
func workloads() ([]string, map[string]any) {
	largeValue := make([]byte, perfLargeValueSizeKB*1024)
	for i := range largeValue {
		largeValue[i] = byte(i)
	}

	ints := make([]int64, 512)
	for i := range ints {
		ints[i] = int64(i * i)
	}

	ratings := map[string]float64{"build": 4.5, "docs": 3.0, "tests": 5.0}

	user := perfUser{
		Name:    "Jane Doe",
		Age:     42,
		Active:  true,
		Tags:    []string{"admin", "ops", "dev"},
		Ratings: ratings,
		Home:    perfAddress{Street: "Main Street 1", City: "Hamburg", Zip: 20095},
	}

	values := map[string]any{
		"bool":   true,
		"int":    int64(1234567890),
		"float":  3.14159265,
		"string": strings.Repeat("abcdefgh", 16),
		"bytes":  largeValue,
		"slice":  ints,
		"map":    ratings,
		"struct": user,
	}

	names := []string{"bool", "int", "float", "string", "bytes", "slice", "map", "struct"}
	return names, values
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if skip == "" {
			continue
		}
		if test == skip || strings.HasPrefix(test, skip+"/") {
			return true
		}
	}
	return false
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult, timer metrics.Timer) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-22sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)
	percentiles := timer.Percentiles([]float64{0.5, 0.99})

	// Print the formatted result
	fmt.Printf("%-22s%.0fns/op (%s/op)\t%.0f ops/sec\tp50 %s\tp99 %s\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(percentiles[0]), time.Duration(percentiles[1]))
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, order []string, results map[string]testing.BenchmarkResult, timers metrics.Registry) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50", "P99", "Skipped",
		"BytesWorkloadKB",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for _, test := range order {
		result := results[test]
		timer := metrics.GetOrRegisterTimer(test, timers)

		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		percentiles := timer.Percentiles([]float64{0.5, 0.99})

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			time.Duration(percentiles[0]).String(),
			time.Duration(percentiles[1]).String(),
			skipped,
			strconv.Itoa(perfLargeValueSizeKB),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
