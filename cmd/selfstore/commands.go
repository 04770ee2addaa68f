package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/maja42/selfstore"
	"github.com/maja42/selfstore/embedding"
	"github.com/maja42/selfstore/internal"
)

func readCmd(args []string, stdin io.Reader, stdout io.Writer) error {
	flags := pflag.NewFlagSet("read", pflag.ContinueOnError)
	exePath := flags.String("exe", "", "executable to read from (- for stdin)")
	digest := flags.Bool("digest", false, "print the BLAKE3 digest of the payload instead of the payload")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *exePath == "" {
		return errors.New("--exe is required")
	}

	var payload io.Reader
	if *exePath == "-" {
		r, err := selfstore.ReadPayload(stdin)
		if err != nil {
			return err
		}
		payload = r
	} else {
		p, err := selfstore.OpenExe(*exePath)
		if err != nil {
			return err
		}
		defer p.Close()
		payload = p
	}

	if *digest {
		sum, err := internal.Digest(payload)
		if err != nil {
			return fmt.Errorf("hashing payload: %w", err)
		}
		_, err = fmt.Fprintln(stdout, hex.EncodeToString(sum[:]))
		return err
	}
	if _, err := io.Copy(stdout, payload); err != nil {
		return fmt.Errorf("writing payload: %w", err)
	}
	return nil
}

func writeCmd(args []string, logger *slog.Logger) error {
	flags := pflag.NewFlagSet("write", pflag.ContinueOnError)
	exePath := flags.String("exe", "", "executable to take the program from")
	text := flags.String("text", "", "payload text")
	file := flags.String("file", "", "file to use as payload")
	outPath := flags.String("out", "", "write the result to this path instead of modifying --exe")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *exePath == "" {
		return errors.New("--exe is required")
	}
	if flags.Changed("text") == (*file != "") {
		return errors.New("exactly one of --text or --file is required")
	}

	var payload io.Reader = strings.NewReader(*text)
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("opening payload: %w", err)
		}
		defer f.Close()
		payload = f
	}

	if *outPath == "" {
		logger.Info("updating executable in place", "exe", *exePath)
		return selfstore.InPlaceUpdater{}.Update(*exePath, payload)
	}
	logger.Info("writing executable", "exe", *exePath, "out", *outPath)
	if err := embedding.BuildFile(*outPath, *exePath, payload); err != nil {
		return fmt.Errorf("writing %s: %w", *outPath, err)
	}
	return nil
}
