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

package kernel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nabbar/papa/match"
	"github.com/nabbar/papa/process"
	"github.com/nabbar/papa/wire"
)

func (k *Kernel) cmdMakeProcess(sess wire.Session, args []string) (wire.Result, error) {
	if len(args) == 0 {
		return wire.Result{}, ErrProtocol("process requires a name")
	}
	name := args[0]
	args = args[1:]

	opts, rest := wire.ParseOptions(args)

	env := map[string]string{}
	rlimits := map[string]uint64{}
	spec := process.Spec{Name: name}
	watch := false

	for key, value := range opts {
		switch {
		case strings.HasPrefix(key, "env."):
			env[key[4:]] = value
		case strings.HasPrefix(key, "rlimit."):
			limitName := key[len("rlimit."):]
			if err := process.ParseRLimitName(limitName); err != nil {
				return wire.Result{}, ErrValidation(`unknown rlimit "%s"`, limitName)
			}
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return wire.Result{}, ErrValidation(`the rlimit value for "%s" must be an integer, not "%s"`, limitName, value)
			}
			rlimits[limitName] = n
		case key == "uid":
			uid, err := process.ResolveUser(value)
			if err != nil {
				return wire.Result{}, ErrValidation("%q is not a valid user id or name", value)
			}
			spec.UID = &uid
		case key == "gid":
			gid, err := process.ResolveGroup(value)
			if err != nil {
				return wire.Result{}, ErrValidation("no such group: %q", value)
			}
			spec.GID = &gid
		case key == "working_dir":
			spec.WorkingDir = value
		case key == "shell":
			spec.Shell = strings.EqualFold(value, "true") || value == "1"
		case key == "stdout":
			spec.Stdout = parseDisposition(value)
		case key == "stderr":
			spec.Stderr = parseDisposition(value)
		case key == "bufsize", key == "output":
			n, err := process.ParseBufSize(value)
			if err != nil {
				return wire.Result{}, ErrValidation("%s", err.Error())
			}
			if n == 0 {
				n = -1 // an explicit bufsize=0 turns capture off; an unset BufSize keeps the default
			}
			spec.BufSize = n
		case key == "watch":
			watch = value != "0" && value != ""
		}
	}

	if spec.UID != nil && spec.GID == nil {
		gid, err := process.PrimaryGroup(*spec.UID)
		if err != nil {
			return wire.Result{}, ErrValidation("could not resolve primary group for uid %d: %s", *spec.UID, err.Error())
		}
		spec.GID = &gid
	}

	if len(rest) == 0 {
		return wire.Result{}, ErrProtocol("no command")
	}
	spec.Args = rest
	spec.Env = env
	spec.RLimits = rlimits

	entry, err := k.Processes.Spawn(spec, socketAdapter{k.Sockets})
	if err != nil {
		return wire.Result{}, ErrConflict("%s", err.Error())
	}

	if watch {
		return k.startWatch(sess, []*process.Entry{entry}, entry.Describe()+"\n")
	}
	return wire.Result{Reply: entry.Describe()}, nil
}

func parseDisposition(v string) process.Disposition {
	switch strings.ToLower(v) {
	case "0", "false", "discard":
		return process.DispositionDiscard
	case "stdout":
		return process.DispositionStdout
	default:
		return process.DispositionCapture
	}
}

func (k *Kernel) cmdListProcesses(_ wire.Session, args []string) (wire.Result, error) {
	names, err := match.Resolve(k.Processes.Names(), args, false)
	if err != nil {
		return wire.Result{}, ErrNotFound("%s", err.Error())
	}

	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, n := range names {
		if e, ok := k.Processes.Get(n); ok {
			lines = append(lines, e.Describe())
		}
	}
	return wire.Result{Reply: strings.Join(lines, "\n")}, nil
}

func (k *Kernel) cmdRemoveProcess(_ wire.Session, args []string) (wire.Result, error) {
	names, err := match.Resolve(k.Processes.Names(), args, true)
	if err != nil {
		return wire.Result{}, ErrNotFound("%s", err.Error())
	}

	for _, n := range names {
		k.Processes.CloseProcessOutput(n)
	}
	return wire.Result{}, nil
}

func (k *Kernel) cmdWatch(sess wire.Session, args []string) (wire.Result, error) {
	names, err := match.Resolve(k.Processes.Names(), args, true)
	if err != nil {
		return wire.Result{}, ErrNotFound("%s", err.Error())
	}

	entries := make([]*process.Entry, 0, len(names))
	for _, n := range names {
		if e, ok := k.Processes.Get(n); ok {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return wire.Result{Reply: "Nothing left to watch"}, nil
	}

	return k.startWatch(sess, entries, fmt.Sprintf("Watching %d\n", len(entries)))
}
