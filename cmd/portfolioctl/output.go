package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// render writes v to the command's output in the --output format. Values
// go through JSON first so YAML keys match the API's field names.
func render(cmd *cobra.Command, v interface{}) error {
	format, _ := cmd.Flags().GetString("output")
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	switch format {
	case "json":
		var pretty interface{}
		if err := json.Unmarshal(raw, &pretty); err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(pretty)
	case "yaml", "":
		var generic interface{}
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return fmt.Errorf("converting output: %w", err)
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	}
	return fmt.Errorf("unknown output format %q", format)
}
