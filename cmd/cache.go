package cmd

import (
	"fmt"

	"larose-cli/storage"

	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the local key-value store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			keys, err := storage.NewKV(db).Keys()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outputJSON {
				return writeJSON(out, keys)
			}
			if len(keys) == 0 {
				fmt.Fprintln(out, "Cache is empty.")
				return nil
			}
			for _, key := range keys {
				fmt.Fprintln(out, key)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear [key...]",
		Short: "Remove stored keys (all when none are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			kv := storage.NewKV(db)
			keys := args
			if len(keys) == 0 {
				keys, err = kv.Keys()
				if err != nil {
					return err
				}
			}
			for _, key := range keys {
				if err := kv.RemoveItem(key); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d key(s).\n", len(keys))
			return nil
		},
	})
	return cmd
}
