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

// Package socket owns the listening sockets papa binds on behalf of client
// processes: the name/path registry, the SO_REUSEPORT clone-for-child
// contract, and the fd handoff that lets a spawned process inherit a
// listener without ever holding it itself.
package socket

import "fmt"

// Family is the address family of a socket.
type Family string

const (
	FamilyUnix  Family = "unix"
	FamilyInet  Family = "inet"
	FamilyInet6 Family = "inet6"
)

// Type is the socket type, independent of family.
type Type string

const (
	TypeStream    Type = "stream"
	TypeDgram     Type = "dgram"
	TypeRaw       Type = "raw"
	TypeRDM       Type = "rdm"
	TypeSeqPacket Type = "seqpacket"
)

// DefaultBacklog is used when a socket spec does not request one.
const DefaultBacklog = 5

// Spec is an immutable description of a listener, as given to "make
// socket". Two Specs compare equal (for the idempotent-create rule)
// ignoring ReusePort and treating a zero Port as matching any concrete
// port actually bound.
type Spec struct {
	Name       string
	Family     Family
	SocketType Type
	Backlog    int

	// UNIX-only.
	Path  string
	Umask *uint32

	// INET/INET6-only.
	Host      string
	Port      int
	Interface string
	ReusePort bool
}

// Equal reports whether s and o describe the same listener for the
// purposes of "make socket" idempotency: ReusePort is ignored, an empty
// Host equals the default host, and a zero Port on either side matches any
// concrete port on the other.
func (s Spec) Equal(o Spec) bool {
	if s.Name != o.Name || s.Family != o.Family || s.SocketType != o.SocketType {
		return false
	}

	backlog, oBacklog := s.Backlog, o.Backlog
	if backlog == 0 {
		backlog = DefaultBacklog
	}
	if oBacklog == 0 {
		oBacklog = DefaultBacklog
	}
	if backlog != oBacklog {
		return false
	}

	if s.Family == FamilyUnix {
		return s.Path == o.Path
	}

	if hostOrDefault(s.Host) != hostOrDefault(o.Host) || s.Interface != o.Interface {
		return false
	}
	if s.Port == 0 || o.Port == 0 {
		return true
	}
	return s.Port == o.Port
}

// Validate checks the structural requirements of a Spec that do not depend
// on the rest of the registry (absolute UNIX path, known family/type).
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("socket requires a name")
	}

	switch s.SocketType {
	case "", TypeStream, TypeDgram, TypeRaw, TypeRDM, TypeSeqPacket:
	default:
		return fmt.Errorf("unknown socket type %q", s.SocketType)
	}

	switch s.Family {
	case FamilyUnix:
		if s.Path == "" {
			return fmt.Errorf("unix socket requires a path")
		}
		if s.Path[0] != '/' {
			return fmt.Errorf("unix socket path must be absolute: %q", s.Path)
		}
	case FamilyInet, FamilyInet6:
		// Host/Port default to 127.0.0.1 and an OS-chosen port; both are valid.
	default:
		return fmt.Errorf("unknown socket family %q", s.Family)
	}

	return nil
}

func (s Spec) backlogOrDefault() int {
	if s.Backlog == 0 {
		return DefaultBacklog
	}
	return s.Backlog
}

func (s Spec) network() string {
	isDgram := s.SocketType == TypeDgram

	switch s.Family {
	case FamilyInet:
		if isDgram {
			return "udp4"
		}
		return "tcp4"
	case FamilyInet6:
		if isDgram {
			return "udp6"
		}
		return "tcp6"
	default:
		if isDgram {
			return "unixgram"
		}
		return "unix"
	}
}
