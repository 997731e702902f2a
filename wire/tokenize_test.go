package wire_test

import (
	"github.com/nabbar/papa/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tokenize", func() {
	It("splits plain whitespace-separated tokens", func() {
		Expect(wire.Tokenize("make socket foo")).To(Equal([]string{"make", "socket", "foo"}))
	})

	It("joins a single trailing backslash with the next token via a space", func() {
		Expect(wire.Tokenize(`foo\ bar baz`)).To(Equal([]string{"foo bar", "baz"}))
	})

	It("folds repeated escaped spaces into one token", func() {
		Expect(wire.Tokenize(`a\ b\ c d`)).To(Equal([]string{"a b c", "d"}))
	})

	It("ignores repeated spaces between tokens", func() {
		Expect(wire.Tokenize("make   socket  foo")).To(Equal([]string{"make", "socket", "foo"}))
	})

	It("returns nil for an empty line", func() {
		Expect(wire.Tokenize("")).To(BeEmpty())
	})
})

var _ = Describe("ParseOptions", func() {
	It("parses leading key=value tokens and stops at the first bare token", func() {
		opts, rest := wire.ParseOptions([]string{"uid=1001", "gid=2000", "/usr/bin/nginx", "-g"})
		Expect(opts).To(Equal(map[string]string{"uid": "1001", "gid": "2000"}))
		Expect(rest).To(Equal([]string{"/usr/bin/nginx", "-g"}))
	})

	It("unquotes a double-quoted value verbatim", func() {
		opts, rest := wire.ParseOptions([]string{`working_dir="/tmp/a\"`})
		Expect(opts).To(Equal(map[string]string{"working_dir": `/tmp/a\`}))
		Expect(rest).To(BeEmpty())
	})

	It("returns every token as rest when none contain '='", func() {
		opts, rest := wire.ParseOptions([]string{"/bin/echo", "hi"})
		Expect(opts).To(BeEmpty())
		Expect(rest).To(Equal([]string{"/bin/echo", "hi"}))
	})
})
