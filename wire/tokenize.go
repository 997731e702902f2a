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

// Package wire implements the newline-delimited text protocol spoken on
// papa's control socket: argument tokenization with backslash-space
// escaping, name=value option parsing, and the abbreviation-aware command
// tree that the dispatcher walks for each request line.
package wire

import "strings"

// Tokenize splits a single protocol line into argv-style tokens on ASCII
// spaces.
//
// A token ending in a backslash does not end the current token: its final
// backslash is stripped, a single space is
// appended, and accumulation continues with the next token. This lets
// "foo\ bar" arrive as the one token "foo bar", and the join repeats across
// any number of escaped spaces, so "a\ b\ c" folds into "a b c".
func Tokenize(line string) []string {
	var args []string
	var acc strings.Builder

	for _, raw := range strings.Split(line, " ") {
		if raw == "" {
			continue
		}
		if strings.HasSuffix(raw, "\\") {
			acc.WriteString(raw[:len(raw)-1])
			acc.WriteByte(' ')
			continue
		}
		acc.WriteString(raw)
		args = append(args, acc.String())
		acc.Reset()
	}
	if acc.Len() > 0 {
		args = append(args, acc.String())
	}
	return args
}

// ParseOptions consumes leading "key=value" tokens from args, stopping at
// the first token that contains no "=". It returns the parsed options and
// whatever tokens remain (the argv for a process, or nothing for most
// commands).
//
// A value wrapped in double quotes is unquoted verbatim rather than run
// through the backslash-join rule: this is the only way to give an option a
// value ending in a backslash without Tokenize folding it into the next
// token.
func ParseOptions(args []string) (map[string]string, []string) {
	opts := make(map[string]string)

	i := 0
	for i < len(args) {
		key, value, ok := strings.Cut(args[i], "=")
		if !ok {
			break
		}
		if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
			value = value[1 : len(value)-1]
		}
		opts[key] = value
		i++
	}

	return opts, args[i:]
}
