package main

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/hupe1980/duckvec/chunk"
)

func newVarintCmd() *cobra.Command {
	var decode bool
	cmd := &cobra.Command{
		Use:   "varint VALUE",
		Short: "Encode a decimal integer as VARINT storage, or decode hex storage",
		Example: `  duckvec varint -- -170141183460469231731687303715884105728
  duckvec varint --decode 800001ff`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if decode {
				b, err := hex.DecodeString(args[0])
				if err != nil {
					return err
				}
				v, err := chunk.DecodeVarint(b)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, v.String())
				return nil
			}
			v, ok := new(big.Int).SetString(args[0], 10)
			if !ok {
				return fmt.Errorf("%q is not a decimal integer", args[0])
			}
			b, err := chunk.EncodeVarint(v)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (%d bytes)\n", hex.EncodeToString(b), len(b))
			return nil
		},
	}
	cmd.Flags().BoolVar(&decode, "decode", false, "Treat VALUE as hex-encoded storage")
	return cmd
}

func newBitsCmd() *cobra.Command {
	var decode bool
	cmd := &cobra.Command{
		Use:   "bits VALUE",
		Short: "Encode a bit string as BIT storage, or decode hex storage",
		Example: `  duckvec bits 0101100111
  duckvec bits --decode 06599f`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if decode {
				b, err := hex.DecodeString(args[0])
				if err != nil {
					return err
				}
				s, err := chunk.BitString(b)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}
			bits, err := chunk.ParseBitString(args[0])
			if err != nil {
				return err
			}
			b := chunk.EncodeBits(bits)
			fmt.Fprintf(out, "%s (%d bytes, padding %d)\n", hex.EncodeToString(b), len(b), b[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&decode, "decode", false, "Treat VALUE as hex-encoded storage")
	return cmd
}
