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

	"github.com/nabbar/papa/errors/pool"
	"github.com/nabbar/papa/match"
	"github.com/nabbar/papa/socket"
	"github.com/nabbar/papa/wire"
)

func (k *Kernel) cmdMakeSocket(_ wire.Session, args []string) (wire.Result, error) {
	if len(args) == 0 {
		return wire.Result{}, ErrProtocol("socket requires a name")
	}
	name := args[0]
	opts, rest := wire.ParseOptions(args[1:])
	if len(rest) != 0 {
		return wire.Result{}, ErrProtocol(`"make socket" takes only name=value options after the name`)
	}

	spec := socket.Spec{Name: name}

	if v, ok := opts["family"]; ok {
		spec.Family = socket.Family(strings.ToLower(v))
	} else {
		spec.Family = socket.FamilyInet
	}
	if v, ok := opts["type"]; ok {
		spec.SocketType = socket.Type(strings.ToLower(v))
	}
	if v, ok := opts["path"]; ok {
		spec.Path = v
	}
	if v, ok := opts["host"]; ok {
		spec.Host = v
	}
	if v, ok := opts["interface"]; ok {
		spec.Interface = v
	}
	if v, ok := opts["port"]; ok {
		p, err := strconv.Atoi(v)
		if err != nil {
			return wire.Result{}, ErrValidation("invalid port %q", v)
		}
		spec.Port = p
	}
	if v, ok := opts["backlog"]; ok {
		b, err := strconv.Atoi(v)
		if err != nil {
			return wire.Result{}, ErrValidation("invalid backlog %q", v)
		}
		spec.Backlog = b
	}
	if v, ok := opts["reuseport"]; ok {
		spec.ReusePort = strings.EqualFold(v, "true") || v == "1"
	}
	if v, ok := opts["umask"]; ok {
		u, err := strconv.ParseUint(v, 8, 32)
		if err != nil {
			return wire.Result{}, ErrValidation("invalid umask %q", v)
		}
		u32 := uint32(u)
		spec.Umask = &u32
	}

	e, err := k.Sockets.Make(spec)
	if err != nil {
		return wire.Result{}, ErrConflict("%s", err.Error())
	}
	return wire.Result{Reply: e.Describe()}, nil
}

func (k *Kernel) cmdListSockets(_ wire.Session, args []string) (wire.Result, error) {
	names, err := match.Resolve(k.Sockets.Names(), args, false)
	if err != nil {
		return wire.Result{}, ErrNotFound("%s", err.Error())
	}

	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, n := range names {
		if e, ok := k.Sockets.Get(n); ok {
			lines = append(lines, e.Describe())
		}
	}
	return wire.Result{Reply: strings.Join(lines, "\n")}, nil
}

// cmdRemoveSocket removes every socket matched by the given patterns. A
// close failure on one socket does not stop the rest from being removed
// (each is independent); failures are collected in a pool and reported
// together rather than only surfacing the first one.
func (k *Kernel) cmdRemoveSocket(_ wire.Session, args []string) (wire.Result, error) {
	names, err := match.Resolve(k.Sockets.Names(), args, true)
	if err != nil {
		return wire.Result{}, ErrNotFound("%s", err.Error())
	}

	failures := pool.New()
	for _, n := range names {
		if rmErr := k.Sockets.Remove(n); rmErr != nil {
			failures.Add(fmt.Errorf("%s: %w", n, rmErr))
		}
	}

	if failures.Len() > 0 {
		return wire.Result{}, ErrSystem("%s", failures.Error().Error())
	}
	return wire.Result{}, nil
}
