// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package chromium

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/saucelabs/proxyauth/log"
)

const devToolsActivePort = "DevToolsActivePort"

// process is a browser started by the host.
type process struct {
	cmd   *exec.Cmd
	wsURL string
	// done receives the result of Wait once the process exits.
	done chan error
}

func launch(ctx context.Context, cfg *Config, args []string, log log.StructuredLogger) (*process, error) {
	path, err := cfg.execPath()
	if err != nil {
		return nil, err
	}

	dataDir := cfg.UserDataDir
	cleanup := func() {}
	if dataDir == "" {
		if dataDir, err = os.MkdirTemp("", "proxyauth-chromium-*"); err != nil {
			return nil, err
		}
		cleanup = func() {
			if err := os.RemoveAll(dataDir); err != nil {
				log.Warn("failed to remove user data dir", "dir", dataDir, "error", err)
			}
		}
	} else {
		// A stale file from a previous run would point at a dead port.
		os.Remove(filepath.Join(dataDir, devToolsActivePort))
	}

	argv := append([]string{
		"--remote-debugging-port=0",
		"--user-data-dir=" + dataDir,
		"--no-first-run",
		"--no-default-browser-check",
	}, args...)
	if cfg.Headless {
		argv = append(argv, "--headless=new")
	}
	argv = append(argv, cfg.Args...)
	argv = append(argv, cfg.StartURL)

	cmd := exec.CommandContext(ctx, path, argv...)
	if err := cmd.Start(); err != nil {
		cleanup()
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file does not exist: %s", path)
		}
		return nil, fmt.Errorf("start browser: %w", err)
	}
	log.Info("browser started", "path", path, "pid", cmd.Process.Pid)

	p := &process{
		cmd:  cmd,
		done: make(chan error, 1),
	}
	go func() {
		err := cmd.Wait()
		cleanup()
		p.done <- err
		close(p.done)
	}()

	lctx, cancel := context.WithTimeout(ctx, cfg.LaunchTimeout)
	defer cancel()
	if p.wsURL, err = waitDevToolsURL(lctx, dataDir, p.done); err != nil {
		cmd.Process.Kill() //nolint:errcheck // best effort
		return nil, fmt.Errorf("get DevTools URL: %w", err)
	}

	return p, nil
}

// waitDevToolsURL polls the DevToolsActivePort file in dataDir until the browser writes it.
func waitDevToolsURL(ctx context.Context, dataDir string, exited <-chan error) (string, error) {
	fpath := filepath.Join(dataDir, devToolsActivePort)

	t := time.NewTicker(50 * time.Millisecond)
	defer t.Stop()
	for {
		if u, err := readDevToolsURL(fpath); err == nil {
			return u, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("waiting for %s: %w", fpath, ctx.Err())
		case err := <-exited:
			return "", fmt.Errorf("browser exited before DevTools was ready: %v", err)
		case <-t.C:
		}
	}
}

func readDevToolsURL(fpath string) (string, error) {
	b, err := os.ReadFile(fpath)
	if err != nil {
		return "", err
	}

	var lines []string
	s := bufio.NewScanner(bytes.NewReader(b))
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	// The browser may not have finished writing the file.
	if len(lines) < 2 {
		return "", os.ErrNotExist
	}
	return fmt.Sprintf("ws://127.0.0.1:%s%s", lines[0], lines[1]), nil
}
