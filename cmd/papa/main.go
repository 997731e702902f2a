/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command papa is a small parent process for sockets and child processes:
// it binds a control socket, accepts line-oriented client sessions, and
// hands them a command tree wired against an in-process kernel.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nabbar/papa/accept"
	"github.com/nabbar/papa/console"
	"github.com/nabbar/papa/daemon"
	"github.com/nabbar/papa/kernel"
	"github.com/nabbar/papa/logger"
	logfld "github.com/nabbar/papa/logger/fields"
	"github.com/nabbar/papa/logger/hookfile"
	loglvl "github.com/nabbar/papa/logger/level"
	"github.com/nabbar/papa/logger/hookstdout"
	"github.com/nabbar/papa/logger/hooksyslog"
)

var (
	flagDebug      bool
	flagUnixSocket string
	flagPort       int
	flagDaemonize  bool
	flagSingleShot bool
)

func main() {
	root := &cobra.Command{
		Use:   "papa",
		Short: "A simple parent process for sockets and other processes",
		RunE:  run,
	}

	root.Flags().BoolVarP(&flagDebug, "debug", "d", false, "run in debug mode")
	root.Flags().StringVarP(&flagUnixSocket, "unix-socket", "u", "", "path to unix socket to bind")
	root.Flags().IntVarP(&flagPort, "port", "p", 20202, "port to bind on localhost")
	root.Flags().BoolVar(&flagDaemonize, "daemonize", false, "daemonize the papa server")
	root.Flags().BoolVar(&flagSingleShot, "single-socket", false, "exit once the first client session closes, idle or not (debug/test use)")

	if err := root.Execute(); err != nil {
		console.ColorPrint.SetColor(nil)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(_ *cobra.Command, _ []string) error {
	if flagDaemonize {
		child, err := daemon.Daemonize()
		if err != nil {
			return fmt.Errorf("daemonizing: %w", err)
		}
		if !child {
			return nil
		}
	}

	log := buildLogger()
	defer func() { _ = log.Close() }()

	startupBanner(log, flagDaemonize)

	k := kernel.New()

	ln, err := accept.BindControlSocket(flagUnixSocket, flagPort)
	if err != nil {
		log.Fatal("bind failed", logfld.Fields{"error": err.Error()})
		return err
	}
	k.Closer().Add(ln)

	acc := accept.New(ln, k, log)
	acc.SingleSocket = flagSingleShot

	if err = acc.Serve(); err != nil {
		log.Fatal("acceptor stopped with error", logfld.Fields{"error": err.Error()})
		return err
	}

	k.Shutdown()
	return nil
}

// buildLogger wires the stdout hook in the foreground only; once
// daemonized (a daemon has no terminal to write to) it wires a file hook
// and a syslog hook as the daemon's durable record instead, matching how
// the teacher layers hooks by deployment mode rather than picking just one
// sink.
func buildLogger() logger.Logger {
	lvl := loglvl.WarnLevel
	if flagDebug {
		lvl = loglvl.InfoLevel
	}

	log := logger.New(lvl)

	if !flagDaemonize {
		log.AddHook(hookstdout.New(loglvl.ErrorLevel))
		return log
	}

	if h, err := hookfile.New(hookfile.Options{
		Filepath:   "/var/log/papa/papa.log",
		Create:     true,
		CreatePath: true,
	}); err == nil {
		log.AddHook(h)
	}

	if h, err := hooksyslog.New("papa"); err == nil {
		log.AddHook(h)
	}

	return log
}

// startupBanner renders the startup summary once into a buffer (so the
// exact same text reaches both the terminal, when there is one, and the
// log), then prints it to stdout in foreground mode. A daemon has no
// terminal to print to, but the log line still records what the process
// bound to.
func startupBanner(log logger.Logger, daemonized bool) {
	console.ColorPrint.SetColor(nil)

	mode := "foreground"
	if daemonized {
		mode = "daemon"
	}

	target := fmt.Sprintf("port %d", flagPort)
	if flagUnixSocket != "" {
		target = "unix socket " + flagUnixSocket
	}

	buf := &bytes.Buffer{}
	_, _ = console.ColorPrint.BuffPrintf(buf, "%s\n", console.PadCenter(" papa ", 40, "="))
	_, _ = console.ColorPrint.BuffPrintf(buf, "  mode:   %s\n", mode)
	_, _ = console.ColorPrint.BuffPrintf(buf, "  listen: %s\n", target)
	_, _ = console.ColorPrint.BuffPrintf(buf, "  pid:    %d\n", os.Getpid())

	if !daemonized {
		console.PrintTabf(0, "%s", buf.String())
	}
	log.Info("papa starting", logfld.Fields{"mode": mode, "listen": target, "pid": os.Getpid(), "banner": buf.String()})
}

