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

import "github.com/nabbar/papa/wire"

const helpDoc = `Possible commands are:
    make socket - Create a socket to be used by processes
    remove sockets - Close and remove sockets by name
    list sockets - List sockets by name
    -----------------------------------------------------
    make process - Launch a process
    remove processes - Stop recording the output of a process and drop it
    list processes - List processes by name
    watch processes - Start receiving the output of processes by name
    -----------------------------------------------------
    set - Set a named value
    get - Get a named value
    list values - List values by name
    remove values - Remove values by name
    -----------------------------------------------------
    quit - Close the client session
    exit-if-idle - Exit papa once sockets, processes and values are all empty
    help - Type "help <cmd>" for more information

All of these commands may be abbreviated: type at least one character of
each word. The one exception is "exit-if-idle", which must be typed in
full.

After a "watch" command, send a bare line to receive more output, or a
line starting with "q" to stop watching.
`

const listDoc = `List sockets, processes or values by name, or "*"/no pattern for all.`
const makeDoc = `Make a new socket or process. Try "help make process" or "help make socket".`
const removeDoc = `Remove a socket, stop watching a process's output, or delete a value.`
const watchDoc = `Watch one or more processes. Patterns may use a trailing "*".`

// buildTree wires every command named in the protocol's two-level command
// space to its handler. It is called once, from New.
func (k *Kernel) buildTree() *wire.Tree {
	return wire.NewTree(helpDoc, map[string]*wire.Node{
		"list": wire.Branch(listDoc, map[string]*wire.Node{
			"sockets":   wire.Leaf(`list sockets [patterns...]`, k.cmdListSockets),
			"processes": wire.Leaf(`list processes [patterns...]`, k.cmdListProcesses),
			"values":    wire.Leaf(`list values [patterns...]`, k.cmdListValues),
		}),
		"make": wire.Branch(makeDoc, map[string]*wire.Node{
			"socket":  wire.Leaf(`make socket <name> [family=... type=... backlog=... path=...|host=... port=... interface=... reuseport=... umask=...]`, k.cmdMakeSocket),
			"process": wire.Leaf(`make process <name> [opts...] [env.K=V...] [rlimit.K=V...] <argv...>`, k.cmdMakeProcess),
		}),
		"remove": wire.Branch(removeDoc, map[string]*wire.Node{
			"sockets":   wire.Leaf(`remove sockets <patterns...>`, k.cmdRemoveSocket),
			"processes": wire.Leaf(`remove processes <patterns...>`, k.cmdRemoveProcess),
			"values":    wire.Leaf(`remove values <patterns...>`, k.cmdRemoveValues),
		}),
		"watch": wire.Branch(watchDoc, map[string]*wire.Node{
			"processes": wire.Leaf(`watch processes <patterns...>`, k.cmdWatch),
		}),
		"set":  wire.Leaf(`set <name> [value...]`, k.cmdSet),
		"get":  wire.Leaf(`get <name>`, k.cmdGet),
		"quit": wire.Leaf(`quit - close this session`, k.cmdQuit),
		"exit-if-idle": {
			Doc:      `exit-if-idle - shut the kernel down once every registry is empty and this session closes`,
			Handler:  k.cmdExitIfIdle,
			NoAbbrev: true,
		},
		"help": wire.Leaf(`help [command...]`, k.cmdHelp),
	})
}

func (k *Kernel) cmdQuit(_ wire.Session, _ []string) (wire.Result, error) {
	return wire.Result{Close: true, Final: "ok\n"}, nil
}

// cmdExitIfIdle arms the idle-exit flag the acceptor polls, but only once
// every registry is empty; otherwise it reports "not idle" and leaves the
// session open, exactly as spec.md §8 invariant 6 requires.
func (k *Kernel) cmdExitIfIdle(_ wire.Session, _ []string) (wire.Result, error) {
	if !k.idle() {
		return wire.Result{Reply: "not idle"}, nil
	}
	k.SetExitIfIdle(true)
	return wire.Result{Close: true, Final: "Exiting papa!\n> "}, nil
}

// idle reports whether the process, socket and value registries are all
// empty. It does not consider connected sessions: spec.md's idle-exit
// invariant is about owned resources, not clients.
func (k *Kernel) idle() bool {
	if len(k.Processes.Names()) != 0 {
		return false
	}
	if len(k.Sockets.Names()) != 0 {
		return false
	}
	names, _ := k.Values.Names(nil)
	return len(names) == 0
}

func (k *Kernel) cmdHelp(_ wire.Session, args []string) (wire.Result, error) {
	text, err := k.tree.HelpText(args)
	if err != nil {
		return wire.Result{}, ErrProtocol("%s", err.Error())
	}
	return wire.Result{Reply: text}, nil
}
