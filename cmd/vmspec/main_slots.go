package main

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/onkernel/vmspec/lib/pci"
	"github.com/spf13/cobra"
)

type cmdSlots struct {
	global *cmdGlobal
}

func (c *cmdSlots) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "slots"
	cmd.Short = "Print the slot to PCI path table"
	cmd.Args = cobra.NoArgs
	cmd.RunE = c.Run

	return cmd
}

func (c *cmdSlots) Run(cmd *cobra.Command, _ []string) error {
	var rows [][]string
	for _, ty := range []pci.SlotType{pci.SlotTypeNIC, pci.SlotTypeDisk, pci.SlotTypeCloudInit} {
		for _, slot := range pci.SlotRange(ty) {
			path, err := pci.SlotToPath(slot, ty)
			if err != nil {
				return err
			}
			rows = append(rows, []string{ty.String(), strconv.Itoa(int(slot)), path.String()})
		}
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetHeader([]string{"CLASS", "SLOT", "PCI PATH"})
	table.AppendBulk(rows)
	table.Render()

	return nil
}
