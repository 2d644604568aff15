package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/replybot/pkg/config"
)

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("falls back to defaults without a config file", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("reply.visibility")).To(Equal("public"))
		Expect(v.GetBool("reply.skip_bots")).To(BeTrue())
		Expect(v.GetInt("stream.queue_size")).To(Equal(64))
		Expect(v.GetString("storage.provider")).To(Equal("sqlite"))
	})

	It("reads config.toml values", func() {
		data := "[instance]\nurl = \"https://file.example\"\n\n[reply]\nresponses = [\"a\", \"b\"]\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("instance.url")).To(Equal("https://file.example"))
		Expect(v.GetStringSlice("reply.responses")).To(Equal([]string{"a", "b"}))
	})

	It("lets REPLYBOT_ environment variables override the file", func() {
		data := "[instance]\nurl = \"https://file.example\"\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
		GinkgoT().Setenv("REPLYBOT_INSTANCE_URL", "https://env.example")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("instance.url")).To(Equal("https://env.example"))
	})

	It("lets bound flags override the environment", func() {
		GinkgoT().Setenv("REPLYBOT_INSTANCE_URL", "https://env.example")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		var instance string
		cmd := &cobra.Command{Use: "test"}
		config.AddStringFlag(cmd, config.Flags, config.FlagInstance, &instance)
		Expect(cmd.Flags().Set("instance", "https://flag.example")).To(Succeed())

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagInstance})
		Expect(v.GetString("instance.url")).To(Equal("https://flag.example"))
	})
})

var _ = Describe("FromViper", func() {
	It("materialises the merged configuration", func() {
		tmpDir := GinkgoT().TempDir()
		data := "[instance]\nurl = \"https://file.example\"\n\n[reply]\nresponses = [\"a\", \"b\"]\n\n[stream]\nmax_read_errors = 0\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
		GinkgoT().Setenv("REPLYBOT_STORAGE_PROVIDER", "memory")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg := config.FromViper(v)
		Expect(cfg.Instance.URL).To(Equal("https://file.example"))
		Expect(cfg.Reply.Responses).To(Equal([]string{"a", "b"}))
		Expect(cfg.Reply.Workers).To(Equal(uint(2)))
		Expect(cfg.Stream.MaxReadErrors).To(Equal(0))
		Expect(cfg.Stream.QueueSize).To(Equal(64))
		Expect(cfg.Storage.Provider).To(Equal(config.StorageMemory))
		Expect(cfg.EventStream.Topic).To(Equal("replybot.replies"))
	})
})

var _ = Describe("Flag registry", func() {
	It("registers flags with defaults from NewDefaultConfig", func() {
		var (
			workers   uint
			queueSize int
			skipBots  bool
			brokers   []string
		)
		cmd := &cobra.Command{Use: "test"}
		config.AddUintFlag(cmd, config.Flags, config.FlagWorkers, &workers)
		config.AddIntFlag(cmd, config.Flags, config.FlagQueueSize, &queueSize)
		config.AddBoolFlag(cmd, config.Flags, config.FlagSkipBots, &skipBots)
		config.AddStringSliceFlag(cmd, config.Flags, config.FlagBrokers, &brokers)

		Expect(workers).To(Equal(uint(2)))
		Expect(queueSize).To(Equal(64))
		Expect(skipBots).To(BeTrue())
		Expect(brokers).To(BeEmpty())

		Expect(cmd.Flags().Lookup("workers").Shorthand).To(Equal("w"))
	})

	It("ignores unknown registry keys", func() {
		var s string
		cmd := &cobra.Command{Use: "test"}
		config.AddStringFlag(cmd, config.Flags, "does-not-exist", &s)
		Expect(cmd.Flags().HasFlags()).To(BeFalse())
	})
})
