package sqldriver

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("rebind", func() {
	It("leaves sqlite placeholders alone", func() {
		d := &Driver{Dialect: SQLite}
		Expect(d.rebind("SELECT 1 WHERE a = ? AND b = ?")).To(Equal("SELECT 1 WHERE a = ? AND b = ?"))
	})

	It("numbers postgres placeholders in order", func() {
		d := &Driver{Dialect: Postgres}
		Expect(d.rebind("VALUES (?, ?, ?)")).To(Equal("VALUES ($1, $2, $3)"))
	})
})
