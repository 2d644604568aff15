package credentials_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/replybot/pkg/credentials"
)

var _ = Describe("Manager", func() {
	var (
		tmpDir string
		mgr    *credentials.Manager
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()

		var err error
		mgr, err = credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewManager", func() {
		It("targets credentials.toml in the override directory", func() {
			Expect(mgr.GetTarget()).To(Equal(filepath.Join(tmpDir, "credentials.toml")))
		})
	})

	Describe("Load", func() {
		It("returns empty credentials when no file exists", func() {
			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Instances).To(BeEmpty())
		})

		It("loads existing credentials", func() {
			data := `version = 0

[instances."mastodon.social"]
access_token = "tok-123"
`
			Expect(os.WriteFile(filepath.Join(tmpDir, "credentials.toml"), []byte(data), 0o600)).To(Succeed())

			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Instances).To(HaveKeyWithValue("mastodon.social", credentials.InstanceCredential{AccessToken: "tok-123"}))
		})

		It("returns an error for invalid TOML", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "credentials.toml"), []byte("not [valid"), 0o600)).To(Succeed())

			_, err := mgr.Load()
			Expect(err).To(MatchError(ContainSubstring("parsing credentials")))
		})
	})

	Describe("SetToken and GetToken", func() {
		It("round-trips a token keyed by host", func() {
			Expect(mgr.SetToken("https://Mastodon.Social/", "tok-1")).To(Succeed())

			Expect(mgr.GetToken("mastodon.social")).To(Equal("tok-1"))
			Expect(mgr.GetToken("https://mastodon.social")).To(Equal("tok-1"))
		})

		It("writes the file with 0600 permissions", func() {
			Expect(mgr.SetToken("mastodon.social", "tok-1")).To(Succeed())

			info, err := os.Stat(mgr.GetTarget())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("rejects an empty host", func() {
			Expect(mgr.SetToken("", "tok")).NotTo(Succeed())
		})

		It("returns an empty token for unknown hosts", func() {
			Expect(mgr.GetToken("example.org")).To(BeEmpty())
		})
	})

	Describe("RemoveToken and ListInstances", func() {
		It("lists hosts sorted and forgets removed ones", func() {
			Expect(mgr.SetToken("b.example", "1")).To(Succeed())
			Expect(mgr.SetToken("a.example", "2")).To(Succeed())

			Expect(mgr.ListInstances()).To(Equal([]string{"a.example", "b.example"}))

			Expect(mgr.RemoveToken("a.example")).To(Succeed())
			Expect(mgr.ListInstances()).To(Equal([]string{"b.example"}))
		})
	})

	Describe("ResolveToken", func() {
		BeforeEach(func() {
			GinkgoT().Setenv(credentials.EnvAccessToken, "")
			Expect(mgr.SetToken("mastodon.social", "stored")).To(Succeed())
		})

		It("prefers the flag value", func() {
			GinkgoT().Setenv(credentials.EnvAccessToken, "from-env")
			Expect(mgr.ResolveToken("from-flag", "mastodon.social")).To(Equal("from-flag"))
		})

		It("falls back to the environment", func() {
			GinkgoT().Setenv(credentials.EnvAccessToken, "from-env")
			Expect(mgr.ResolveToken("", "mastodon.social")).To(Equal("from-env"))
		})

		It("falls back to the stored token", func() {
			Expect(mgr.ResolveToken("", "mastodon.social")).To(Equal("stored"))
		})

		It("fails when nothing is available", func() {
			_, err := mgr.ResolveToken("", "other.example")
			Expect(err).To(MatchError(credentials.ErrNoToken))
		})
	})
})
