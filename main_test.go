package main

import (
	"os"
	"time"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"
)

var _ = Describe("Configuration Loading Suite", func() {
	const testConfig = `
http_address="127.0.0.1:4180"
upstream="http://httpbin"
canvas_url="https://canvas.example.edu"
client_id="10000000000001"
client_secret="canvas-client-secret"
cookie_secret="OQINaROshtE9TcZkNAm-5Zs2Pv3xaWytBmc5W7sPX7w="
protected_paths=["/courses", "regex:/admin/.*"]
`

	testExpectedOptions := func() *options.Options {
		opts := options.NewOptions()
		opts.Server.HTTPAddress = "127.0.0.1:4180"
		opts.Upstream.Upstream = "http://httpbin"
		opts.Canvas.URL = "https://canvas.example.edu"
		opts.Canvas.ClientID = "10000000000001"
		opts.Canvas.ClientSecret = "canvas-client-secret"
		opts.Cookie.Secret = "OQINaROshtE9TcZkNAm-5Zs2Pv3xaWytBmc5W7sPX7w="
		opts.Paths.ProtectedPaths = []string{"/courses", "regex:/admin/.*"}
		return opts
	}

	type loadConfigurationTableInput struct {
		configContent   string
		rulesContent    string
		args            []string
		extraFlags      func() *pflag.FlagSet
		expectedOptions func() *options.Options
		expectedErr     string
	}

	writeTemp := func(pattern, content string) string {
		file, err := os.CreateTemp("", pattern)
		Expect(err).ToNot(HaveOccurred())
		defer file.Close()

		_, err = file.WriteString(content)
		Expect(err).ToNot(HaveOccurred())
		return file.Name()
	}

	DescribeTable("LoadConfiguration",
		func(in loadConfigurationTableInput) {
			var configFileName string
			if in.configContent != "" {
				configFileName = writeTemp("canvas-auth-proxy-test-config-*.cfg", in.configContent)
				defer os.Remove(configFileName)
			}

			args := in.args
			var rulesFileName string
			if in.rulesContent != "" {
				rulesFileName = writeTemp("canvas-auth-proxy-test-rules-*.yaml", in.rulesContent)
				defer os.Remove(rulesFileName)
				args = append(args, "--path-rules-file="+rulesFileName)
			}

			extraFlags := pflag.NewFlagSet("test-flagset", pflag.ContinueOnError)
			if in.extraFlags != nil {
				extraFlags = in.extraFlags()
			}

			opts, err := loadConfiguration(configFileName, extraFlags, args)
			if in.expectedErr != "" {
				Expect(err).To(MatchError(ContainSubstring(in.expectedErr)))
				Expect(opts).To(BeNil())
				return
			}
			Expect(err).ToNot(HaveOccurred())

			expected := in.expectedOptions()
			expected.Paths.PathRulesFile = rulesFileName
			Expect(opts).To(Equal(expected))
		},
		Entry("with the config file", loadConfigurationTableInput{
			configContent:   testConfig,
			expectedOptions: testExpectedOptions,
		}),
		Entry("with flags overriding the config file", loadConfigurationTableInput{
			configContent: testConfig,
			args:          []string{"--upstream", "file:///var/www", "--exchange-timeout", "3s", "--public-path", "/help"},
			expectedOptions: func() *options.Options {
				opts := testExpectedOptions()
				opts.Upstream.Upstream = "file:///var/www"
				opts.Canvas.ExchangeTimeout = 3 * time.Second
				opts.Paths.PublicPaths = []string{"/help"}
				return opts
			},
		}),
		Entry("with a path rules file", loadConfigurationTableInput{
			configContent: testConfig,
			rulesContent:  "publicPaths:\n- /courses/public\n",
			expectedOptions: func() *options.Options {
				opts := testExpectedOptions()
				opts.Paths.PublicPaths = []string{"/courses/public"}
				return opts
			},
		}),
		Entry("with extra flags from main", loadConfigurationTableInput{
			configContent: testConfig,
			args:          []string{"--version=false"},
			extraFlags: func() *pflag.FlagSet {
				flagSet := pflag.NewFlagSet("extra", pflag.ContinueOnError)
				flagSet.Bool("version", false, "print version string")
				return flagSet
			},
			expectedOptions: testExpectedOptions,
		}),
		Entry("with an unknown option in the config file", loadConfigurationTableInput{
			configContent: testConfig + "unknown_option=\"foo\"\n",
			expectedErr:   "failed to load config",
		}),
		Entry("with a missing path rules file", loadConfigurationTableInput{
			configContent: testConfig,
			args:          []string{"--path-rules-file=/does/not/exist.yaml"},
			expectedErr:   "failed to load path rules",
		}),
	)
})
