package commands

import (
	"github.com/spf13/cobra"
)

func newMethodCmd(a *app) *cobra.Command {
	var parenless bool
	cmd := &cobra.Command{
		Use:   "method <program> <type> <name>",
		Short: "Show the compiler-generated method <name> on <type>",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0])
			if err != nil {
				return err
			}
			sig, err := s.method(cmd.Context(), args[1], args[2], parenless)
			if err != nil {
				return err
			}
			printSignature(cmd.OutOrStdout(), sig)
			return nil
		},
	}
	cmd.Flags().BoolVar(&parenless, "parenless", false, "query the parenless form (domain accessors)")
	return cmd
}

func newBinopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "binop <program> <lhs> <rhs> <op>",
		Short: "Show the compiler-generated operator for <lhs> <op> <rhs>",
		Long: `Operands are types with an optional leading intent, e.g. "Color" or
"type int". The only generated binary operators are the enum casts, so <op>
is usually ":".`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0])
			if err != nil {
				return err
			}
			sig, err := s.binop(cmd.Context(), args[1], args[2], args[3])
			if err != nil {
				return err
			}
			printSignature(cmd.OutOrStdout(), sig)
			return nil
		},
	}
}

func newFieldCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "field <program> <type> <field>",
		Short: "Show the generated accessor for a field",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(args[0])
			if err != nil {
				return err
			}
			sig, err := s.field(cmd.Context(), args[1], args[2])
			if err != nil {
				return err
			}
			printSignature(cmd.OutOrStdout(), sig)
			return nil
		},
	}
}
