package process_test

import (
	"github.com/nabbar/papa/process"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Spec", func() {
	base := func() process.Spec {
		return process.Spec{
			Name: "web",
			Args: []string{"/bin/echo", "hi"},
			Env:  map[string]string{"A": "1"},
		}
	}

	It("is equal to itself", func() {
		s := base()
		Expect(s.Equal(base())).To(BeTrue())
	})

	It("is not equal when args differ", func() {
		a := base()
		b := base()
		b.Args = []string{"/bin/echo", "bye"}
		Expect(a.Equal(b)).To(BeFalse())
	})

	It("ignores stdout/stderr disposition when capture is fully disabled", func() {
		a := base()
		a.BufSize = -1
		a.Stdout = process.DispositionCapture
		b := base()
		b.BufSize = -1
		b.Stdout = process.DispositionDiscard
		Expect(a.Equal(b)).To(BeTrue())
	})

	It("rejects an empty command", func() {
		s := process.Spec{Name: "x"}
		Expect(s.Validate()).To(HaveOccurred())
	})

	It("rejects a spec with no name", func() {
		s := process.Spec{Args: []string{"/bin/echo"}}
		Expect(s.Validate()).To(HaveOccurred())
	})
})

var _ = Describe("ParseBufSize", func() {
	It("parses a plain byte count", func() {
		n, err := process.ParseBufSize("512")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(512))
	})

	It("parses k/m/g suffixes", func() {
		n, err := process.ParseBufSize("2k")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2048))

		n, err = process.ParseBufSize("1m")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1 << 20))

		n, err = process.ParseBufSize("1g")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1 << 30))
	})

	It("rejects garbage", func() {
		_, err := process.ParseBufSize("abc")
		Expect(err).To(HaveOccurred())
	})
})
