/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package errors

// Return collects an Error and its parent chain through two callbacks,
// letting a caller flatten an Error into its own representation (the
// wire codec's "Error: <message>" line, a log field set, ...) without
// this package knowing about that representation.
type Return interface {
	SetError(code int, message string, file string, line int)
	AddParent(code int, message string, file string, line int)
}

// DefaultReturn is a minimal Return that keeps only the first reported
// error and the messages of every parent in the chain.
type DefaultReturn struct {
	Code    int
	Message string
	Parents []string
}

func NewDefaultReturn() *DefaultReturn {
	return &DefaultReturn{}
}

func (d *DefaultReturn) SetError(code int, message string, file string, line int) {
	d.Code = code
	d.Message = message
}

func (d *DefaultReturn) AddParent(code int, message string, file string, line int) {
	d.Parents = append(d.Parents, message)
}
