// Command apdudispatch is a minimal terminal driver for the dispatcher:
// it reads one hex-encoded command APDU per line from stdin, submits it on
// the contact interchange, drives one Poll, and prints the hex-encoded
// response.
//
// It follows a small flag-based driver shape: parse a couple of flags,
// load a profile, run a loop that alternates "feed input" and "process one
// step".
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	apdudispatch "github.com/mlemaux/apdudispatch"
	"github.com/mlemaux/apdudispatch/pkg/config"
)

func main() {
	profilePath := flag.String("p", "", "ini profile path (optional; built-in defaults used if empty)")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if *profilePath != "" {
		loaded, err := config.Load(*profilePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "apdudispatch: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if len(cfg.Apps) == 0 {
		cfg.Apps = append(cfg.Apps, config.AppDescriptor{
			AID: []byte{0x0A, 0x01, 0x00, 0x00, 0x01},
			INS: 0x10,
		})
	}

	rt, err := cfg.Build(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "apdudispatch: %v\n", err)
		os.Exit(1)
	}

	logger.Info("ready", "apps", len(rt.Apps))

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		raw, err := hex.DecodeString(strings.ReplaceAll(line, " ", ""))
		if err != nil {
			fmt.Fprintf(os.Stderr, "apdudispatch: invalid hex %q: %v\n", line, err)
			continue
		}
		if err := rt.Contact.Request(apdudispatch.Contact, raw); err != nil {
			fmt.Fprintf(os.Stderr, "apdudispatch: request rejected: %v\n", err)
			continue
		}
		if _, err := rt.Dispatcher.Poll(rt.Apps); err != nil {
			fmt.Fprintf(os.Stderr, "apdudispatch: poll failed: %v\n", err)
			continue
		}
		resp, err := rt.Contact.TakeResponse()
		if err != nil {
			fmt.Fprintf(os.Stderr, "apdudispatch: no response: %v\n", err)
			continue
		}
		fmt.Println(strings.ToUpper(hex.EncodeToString(resp)))
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "apdudispatch: %v\n", err)
		os.Exit(1)
	}
}
