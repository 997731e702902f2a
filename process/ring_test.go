package process_test

import (
	"github.com/nabbar/papa/process"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OutputRing", func() {
	It("drops oldest items to stay within capacity", func() {
		r := process.NewOutputRing(10)
		r.Append(process.StreamStdout, 1, []byte("12345"))
		r.Append(process.StreamStdout, 2, []byte("12345"))
		r.Append(process.StreamStdout, 3, []byte("123"))

		newest, items := r.Retrieve()
		Expect(newest).To(Equal(int64(3)))
		Expect(items).To(HaveLen(2))
		Expect(items[0].Timestamp).To(Equal(int64(2)))
		Expect(items[1].Timestamp).To(Equal(int64(3)))
	})

	It("clears and holds the single most recent write when it alone exceeds capacity", func() {
		r := process.NewOutputRing(4)
		r.Append(process.StreamStdout, 1, []byte("ab"))
		r.Append(process.StreamStdout, 2, []byte("this-is-way-too-big"))

		_, items := r.Retrieve()
		Expect(items).To(HaveLen(1))
		Expect(items[0].Timestamp).To(Equal(int64(2)))
		Expect(string(items[0].Data)).To(Equal("this-is-way-too-big"))
	})

	It("removes every item up to and including the acknowledged timestamp", func() {
		r := process.NewOutputRing(100)
		r.Append(process.StreamStdout, 1, []byte("a"))
		r.Append(process.StreamStdout, 2, []byte("b"))
		r.Append(process.StreamStdout, 3, []byte("c"))

		r.Remove(2)

		_, items := r.Retrieve()
		Expect(items).To(HaveLen(1))
		Expect(items[0].Timestamp).To(Equal(int64(3)))
	})

	It("is a no-op when disabled (bufcap <= 0)", func() {
		r := process.NewOutputRing(0)
		Expect(r.Disabled()).To(BeTrue())

		r.Append(process.StreamStdout, 1, []byte("anything"))
		_, items := r.Retrieve()
		Expect(items).To(BeEmpty())
	})

	It("stops accepting writes after Close", func() {
		r := process.NewOutputRing(10)
		r.Append(process.StreamStdout, 1, []byte("a"))
		r.Close()
		r.Append(process.StreamStdout, 2, []byte("b"))

		_, items := r.Retrieve()
		Expect(items).To(BeEmpty())
	})
})
