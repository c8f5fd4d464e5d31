package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mprt/gripscale/pkg/scale"
)

func NewPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List available serial ports",
		RunE: func(_ *cobra.Command, _ []string) error {
			ports, err := scale.Ports()
			if err != nil {
				return errors.Wrap(err, "failed to list serial ports")
			}
			if len(ports) == 0 {
				fmt.Println("No serial ports found.")
				return nil
			}
			for _, p := range ports {
				fmt.Println(p.Name)
			}
			return nil
		},
	}
}
