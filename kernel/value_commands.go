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

func (k *Kernel) cmdListValues(_ wire.Session, args []string) (wire.Result, error) {
	out, err := k.Values.List(args)
	if err != nil {
		return wire.Result{}, ErrNotFound("%s", err.Error())
	}
	return wire.Result{Reply: out}, nil
}

func (k *Kernel) cmdRemoveValues(_ wire.Session, args []string) (wire.Result, error) {
	if err := k.Values.Clear(args); err != nil {
		return wire.Result{}, ErrValidation("%s", err.Error())
	}
	return wire.Result{}, nil
}

func (k *Kernel) cmdSet(_ wire.Session, args []string) (wire.Result, error) {
	if len(args) == 0 {
		return wire.Result{}, ErrProtocol("set requires a name")
	}
	name := args[0]
	rest := args[1:]

	if len(rest) == 0 {
		k.Values.Unset(name)
		return wire.Result{}, nil
	}

	value := rest[0]
	for _, tok := range rest[1:] {
		value += " " + tok
	}
	k.Values.Set(name, value)
	return wire.Result{}, nil
}

func (k *Kernel) cmdGet(_ wire.Session, args []string) (wire.Result, error) {
	if len(args) == 0 {
		return wire.Result{}, ErrProtocol("get requires a name")
	}
	v, _ := k.Values.Get(args[0])
	return wire.Result{Reply: v}, nil
}
