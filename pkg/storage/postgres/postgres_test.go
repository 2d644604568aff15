package postgres_test

import (
	"context"
	"fmt"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/replybot/pkg/storage"
	"github.com/papercomputeco/replybot/pkg/storage/postgres"
	testutils "github.com/papercomputeco/replybot/pkg/utils/test"
)

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("REPLYBOT_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("REPLYBOT_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Driver", func() {
	testutils.DescribeLedger(func() storage.Driver {
		ctx := context.Background()

		driver, err := postgres.NewDriver(ctx, connStr())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(driver.Close)

		// Clean all replies before each test for isolation.
		_, err = driver.DB.ExecContext(ctx, "DELETE FROM replies")
		Expect(err).NotTo(HaveOccurred())

		return driver
	})

	Describe("NewDriver", func() {
		It("returns an error for invalid connection string", func() {
			connStr()
			_, err := postgres.NewDriver(context.Background(), "host=invalid port=9999 user=bad dbname=bad sslmode=disable connect_timeout=1")
			Expect(err).To(HaveOccurred())
			fmt.Fprintf(GinkgoWriter, "expected error: %v\n", err)
		})
	})
})
