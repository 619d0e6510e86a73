package cmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/zeebo/xxh3"
)

// Backup container: a small magic, the xxh3 digest of the raw table
// bytes, then the zstd stream. Restore refuses output that does not
// hash back to the stored digest.
var backupMagic = []byte("DBZ1")

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup <file> <out>",
	Short: "Write a compressed, checksummed copy of a table file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		out, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer out.Close()

		var digest [8]byte
		binary.LittleEndian.PutUint64(digest[:], xxh3.Hash(raw))
		if _, err := out.Write(backupMagic); err != nil {
			return err
		}
		if _, err := out.Write(digest[:]); err != nil {
			return err
		}

		zw, err := zstd.NewWriter(out)
		if err != nil {
			return err
		}
		if _, err := zw.Write(raw); err != nil {
			zw.Close()
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}

		cmd.Printf("Backed up %d bytes (xxh3 %016x)\n", len(raw), xxh3.Hash(raw))
		return nil
	},
}

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore <backup> <out>",
	Short: "Restore a table file from a backup, verifying its checksum",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		head := make([]byte, len(backupMagic)+8)
		if _, err := io.ReadFull(in, head); err != nil {
			return fmt.Errorf("read backup header: %w", err)
		}
		if !bytes.Equal(head[:len(backupMagic)], backupMagic) {
			return fmt.Errorf("%s is not a dbf3 backup", args[0])
		}
		want := binary.LittleEndian.Uint64(head[len(backupMagic):])

		zr, err := zstd.NewReader(in)
		if err != nil {
			return err
		}
		defer zr.Close()

		raw, err := io.ReadAll(zr)
		if err != nil {
			return fmt.Errorf("decompress: %w", err)
		}
		if got := xxh3.Hash(raw); got != want {
			return fmt.Errorf("checksum mismatch: backup says %016x, content hashes to %016x", want, got)
		}

		if err := os.WriteFile(args[1], raw, 0o644); err != nil {
			return err
		}
		cmd.Printf("Restored %d bytes to %s\n", len(raw), args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}
