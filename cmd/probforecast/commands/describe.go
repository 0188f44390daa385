package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

type DescribeOptions struct {
	ModelFile string
	Indent    string
}

func NewDescribeCmd() *cobra.Command {
	opts := &DescribeOptions{}

	cmd := &cobra.Command{
		Use:     "describe",
		Short:   "Print the options and weight summary of a model file",
		Example: `  probforecast describe --model model.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(opts, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&opts.ModelFile, "model", "m", "model.json", "Model file to describe")
	cmd.Flags().StringVar(&opts.Indent, "indent", "  ", "Indentation of nested sections")

	return cmd
}

func runDescribe(opts *DescribeOptions, w io.Writer) error {
	_, m, err := readModel(opts.ModelFile)
	if err != nil {
		return err
	}
	return m.TablePrint(w, "", opts.Indent)
}
