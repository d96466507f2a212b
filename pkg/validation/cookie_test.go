package validation

import (
	"strings"
	"time"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/options"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cookie", func() {
	const (
		invalidNameMsg   = "invalid cookie name: \"_canvas;auth\""
		longNameMsg      = "cookie name should be under 256 characters: cookie name is 260 characters"
		missingSecretMsg = "missing setting: cookie-secret"
		shortSecretMsg   = "cookie_secret must be 16, 24, or 32 bytes to create an AES cipher, but is 6 bytes"
		zeroExpireMsg    = "cookie_expire (\"0s\") must be greater than 0"
		badSameSiteMsg   = "cookie_samesite (\"invalid\") must be one of ['', 'lax', 'strict', 'none']"
	)

	valid := func() options.Cookie {
		return options.Cookie{
			Name:   "_canvas_auth",
			Secret: cookieSecret,
			Expire: 168 * time.Hour,
		}
	}

	DescribeTable("validateCookie",
		func(mutate func(*options.Cookie), expected []string) {
			c := valid()
			mutate(&c)
			Expect(validateCookie(c)).To(ConsistOf(expected))
		},
		Entry("accepts the defaults", func(*options.Cookie) {}, []string{}),
		Entry("requires a secret", func(c *options.Cookie) { c.Secret = "" }, []string{missingSecretMsg}),
		Entry("rejects a secret of the wrong size", func(c *options.Cookie) { c.Secret = "abcdef" }, []string{shortSecretMsg}),
		Entry("accepts a base64 encoded secret", func(c *options.Cookie) {
			c.Secret = "c2VjcmV0dGhpcnR5dHdvYnl0ZXMrYWJjZGVmZ2hpams"
		}, []string{}),
		Entry("measures a base64 secret after decoding", func(c *options.Cookie) {
			c.Secret = "YWJjZGVmCg"
		}, []string{"cookie_secret must be 16, 24, or 32 bytes to create an AES cipher, but is 10 bytes"}),
		Entry("rejects a separator in the name", func(c *options.Cookie) { c.Name = "_canvas;auth" }, []string{invalidNameMsg}),
		Entry("rejects an overlong name", func(c *options.Cookie) {
			c.Name = strings.Repeat("abcdefghijklmnopqrstuvwxyz", 10)
		}, []string{longNameMsg}),
		Entry("requires a positive expiry", func(c *options.Cookie) { c.Expire = 0 }, []string{zeroExpireMsg}),
		Entry("accepts samesite none", func(c *options.Cookie) { c.SameSite = "none" }, []string{}),
		Entry("accepts samesite lax", func(c *options.Cookie) { c.SameSite = "lax" }, []string{}),
		Entry("accepts samesite strict", func(c *options.Cookie) { c.SameSite = "strict" }, []string{}),
		Entry("rejects an unknown samesite", func(c *options.Cookie) { c.SameSite = "invalid" }, []string{badSameSiteMsg}),
		Entry("reports every problem at once", func(c *options.Cookie) {
			c.Name = "_canvas;auth"
			c.Secret = "abcdef"
			c.Expire = 0
			c.SameSite = "invalid"
		}, []string{invalidNameMsg, shortSecretMsg, zeroExpireMsg, badSameSiteMsg}),
	)
})
