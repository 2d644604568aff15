package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/replybot/cmd/replybot/config"
	"github.com/papercomputeco/replybot/pkg/config"
	"github.com/papercomputeco/replybot/pkg/credentials"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, list and import subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list", "import"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir    string
		configDir string
		origDir   string
		out       *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		out = &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		var err error
		tmpDir = GinkgoT().TempDir()

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .replybot dir so the manager picks it up
		configDir = filepath.Join(tmpDir, ".replybot")
		Expect(os.MkdirAll(configDir, 0o700)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			Expect(run("set", "reply.visibility", "unlisted")).To(Succeed())

			_, err := os.Stat(filepath.Join(configDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())

			cfger, err := config.NewConfiger(configDir)
			Expect(err).NotTo(HaveOccurred())
			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Reply.Visibility).To(Equal("unlisted"))
		})

		It("accepts a JSON list of responses", func() {
			Expect(run("set", "reply.responses", `["one", "two"]`)).To(Succeed())

			cfger, err := config.NewConfiger(configDir)
			Expect(err).NotTo(HaveOccurred())
			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Reply.Responses).To(Equal([]string{"one", "two"}))
		})

		It("rejects unknown keys", func() {
			Expect(run("set", "invalid_key", "value")).NotTo(Succeed())
		})

		It("rejects invalid values", func() {
			Expect(run("set", "reply.visibility", "everyone")).NotTo(Succeed())
		})

		It("requires exactly two arguments", func() {
			Expect(run("set", "reply.visibility")).NotTo(Succeed())
		})
	})

	Describe("get subcommand", func() {
		It("prints a stored value", func() {
			Expect(run("set", "instance.url", "https://example.social")).To(Succeed())

			Expect(run("get", "instance.url")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("https://example.social"))
		})

		It("prints defaults when nothing is stored", func() {
			Expect(run("get", "storage.provider")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("sqlite"))
		})

		It("rejects unknown keys", func() {
			Expect(run("get", "nope")).NotTo(Succeed())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key", func() {
			Expect(run("list")).To(Succeed())
			for _, key := range config.ValidConfigKeys() {
				Expect(out.String()).To(ContainSubstring(key))
			}
		})
	})

	Describe("import subcommand", func() {
		It("imports a legacy config.yaml", func() {
			legacy := filepath.Join(tmpDir, "config.yaml")
			data := "instance_url: https://legacy.example\napi_token: tok-123\nresponses:\n  - hey\n  - hello\n"
			Expect(os.WriteFile(legacy, []byte(data), 0o600)).To(Succeed())

			Expect(run("import", legacy)).To(Succeed())

			cfger, err := config.NewConfiger(configDir)
			Expect(err).NotTo(HaveOccurred())
			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Instance.URL).To(Equal("https://legacy.example"))
			Expect(cfg.Reply.Responses).To(Equal([]string{"hey", "hello"}))

			mgr, err := credentials.NewManager(configDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr.GetToken("legacy.example")).To(Equal("tok-123"))
		})

		It("fails for a missing file", func() {
			Expect(run("import", filepath.Join(tmpDir, "missing.yaml"))).NotTo(Succeed())
		})
	})
})
