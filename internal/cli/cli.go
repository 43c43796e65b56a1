package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/sello-app/sello/internal/app"
	"github.com/sello-app/sello/internal/config"
	"github.com/sello-app/sello/internal/qr"
)

// NewRootCommand builds the root sello CLI command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sello",
		Short: "Sello QR order confirmation service",
	}

	root.AddCommand(newStartCmd())
	root.AddCommand(newWorkerCmd())
	root.AddCommand(newQRCmd())

	return root
}

// Execute runs the sello CLI.
func Execute() error {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "start",
		Aliases: []string{"run"},
		Short:   "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := fx.New(app.Module)
			if err := application.Start(cmd.Context()); err != nil {
				return err
			}
			<-cmd.Context().Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return application.Stop(stopCtx)
		},
	}
}

func newWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage background workers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run worker engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			application := fx.New(app.Worker)
			if err := application.Start(cmd.Context()); err != nil {
				return err
			}
			<-cmd.Context().Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return application.Stop(stopCtx)
		},
	})
	return cmd
}

// newQRCmd encodes a piece of text straight to a PNG file, without the HTTP
// surface. Handy for printing confirmation posters at a desk.
func newQRCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr [text]",
		Short: "Encode text as a QR PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			size, _ := cmd.Flags().GetInt("size")
			level, _ := cmd.Flags().GetString("level")

			cfg, err := config.New()
			if err != nil {
				return err
			}

			opts := qr.Options{
				Level:      cfg.QR.Level,
				Size:       cfg.QR.Size,
				Margin:     cfg.QR.Margin,
				Foreground: cfg.QR.Foreground,
				Background: cfg.QR.Background,
			}
			if level != "" {
				opts.Level = level
			}
			if size > 0 {
				opts.Size = size
			}

			png, err := qr.Encode(args[0], opts)
			if err != nil {
				return err
			}

			if err := os.WriteFile(out, png, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(png))
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "qr.png", "Output PNG path")
	cmd.Flags().Int("size", 0, "Image size in pixels (defaults to QR_SIZE)")
	cmd.Flags().String("level", "", "Error-correction level: low, medium, high, highest")
	return cmd
}
