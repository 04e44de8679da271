package inspect

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/ValentinKolb/birch/cmd/util"
	"github.com/ValentinKolb/birch/lib/serializer"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Logger = logger.GetLogger("inspect")

	InspectCmd = &cobra.Command{
		Use:   "inspect <file>",
		Short: "Examine a file of serialized values",
		Long: `Examine a file written by the serialization engine. Prints the file size and
a hex preview of the leading bytes. With --tagged the leading type tag is
reported before the payload, with --as the payload is decoded as the given
primitive type and printed.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: processConfig,
		RunE:    run,
	}

	inspectTagged  = false
	inspectAs      = ""
	inspectPreview = 64
)

// inspectTypes maps the --as flag values to the decode target types
var inspectTypes = map[string]reflect.Type{
	"bool":    reflect.TypeOf(false),
	"int":     reflect.TypeOf(int(0)),
	"int8":    reflect.TypeOf(int8(0)),
	"int16":   reflect.TypeOf(int16(0)),
	"int32":   reflect.TypeOf(int32(0)),
	"int64":   reflect.TypeOf(int64(0)),
	"uint":    reflect.TypeOf(uint(0)),
	"uint8":   reflect.TypeOf(uint8(0)),
	"uint16":  reflect.TypeOf(uint16(0)),
	"uint32":  reflect.TypeOf(uint32(0)),
	"uint64":  reflect.TypeOf(uint64(0)),
	"float32": reflect.TypeOf(float32(0)),
	"float64": reflect.TypeOf(float64(0)),
	"string":  reflect.TypeOf(""),
	"bytes":   reflect.TypeOf([]byte(nil)),
}

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitCLIConfig)

	// add flags
	key := "tagged"
	InspectCmd.Flags().Bool(key, false, util.WrapString("Treat the payload as tagged: report the leading type tag before decoding"))

	key = "as"
	InspectCmd.Flags().String(key, "", util.WrapString(fmt.Sprintf("Decode the payload as the given primitive type (one of: %s)", strings.Join(typeNames(), ", "))))

	key = "preview"
	InspectCmd.Flags().Int(key, 64, util.WrapString("How many leading bytes to show in the hex preview"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// configure logging
	util.InitLoggers(viper.GetString("log-level"))

	inspectTagged = viper.GetBool("tagged")
	inspectAs = viper.GetString("as")
	inspectPreview = viper.GetInt("preview")

	if inspectAs != "" {
		if _, ok := inspectTypes[inspectAs]; !ok {
			return fmt.Errorf("unknown type %q for --as (expected one of: %s)", inspectAs, strings.Join(typeNames(), ", "))
		}
	}

	return nil
}

// run inspects the given file
func run(_ *cobra.Command, args []string) error {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %v", path, err)
	}

	Logger.Debugf("inspecting %s (%d bytes)", path, len(data))

	fmt.Printf("File: %s\n", path)
	fmt.Printf("Size: %d bytes\n", len(data))
	fmt.Println()
	fmt.Print(hexPreview(data, inspectPreview))

	payload := data

	// report the leading type tag if requested
	if inspectTagged {
		if len(payload) < 2 {
			return fmt.Errorf("payload too short for a type tag (%d bytes)", len(payload))
		}
		tag := binary.BigEndian.Uint16(payload)
		fmt.Printf("\nType tag: %d (0x%04x)\n", tag, tag)
		payload = payload[2:]
	}

	// decode the payload if a target type was given
	if inspectAs != "" {
		v, err := decodeAs(inspectAs, payload)
		if err != nil {
			return fmt.Errorf("failed to decode payload as %s: %v", inspectAs, err)
		}
		fmt.Printf("\nDecoded (%s): %v\n", inspectAs, v)
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// decodeAs decodes data as the named primitive type with a fresh loader
func decodeAs(typeName string, data []byte) (any, error) {
	ld := serializer.NewLoader(nil)

	target := reflect.New(inspectTypes[typeName])
	if err := ld.Deserialize(data, target.Interface()); err != nil {
		return nil, err
	}

	return target.Elem().Interface(), nil
}

// hexPreview renders the first n bytes of data as a hex dump
func hexPreview(data []byte, n int) string {
	if n > len(data) {
		n = len(data)
	}

	dump := hex.Dump(data[:n])
	if n < len(data) {
		dump += fmt.Sprintf("... (%d more bytes)\n", len(data)-n)
	}

	return dump
}

// typeNames lists the supported --as types in a stable order
func typeNames() []string {
	names := make([]string, 0, len(inspectTypes))
	for name := range inspectTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
