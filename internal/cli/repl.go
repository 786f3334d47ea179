package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Shell reads commands line by line until EOF or "exit". Command errors
// are printed and do not end the loop.
func (c *CLI) Shell(ctx context.Context) error {
	for {
		fmt.Fprint(c.out, "userctl> ")
		line, err := c.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if err != nil && line == "" {
			fmt.Fprintln(c.out)
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(c.out, "Bye!")
			return nil
		case "shell":
			fmt.Fprintln(c.out, "already in shell")
			continue
		}

		if err := c.Execute(ctx, parts); err != nil {
			if errors.Is(err, ErrUsage) {
				fmt.Fprintln(c.out, err)
				continue
			}
			fmt.Fprintln(c.out, "error:", err)
		}
	}
}
