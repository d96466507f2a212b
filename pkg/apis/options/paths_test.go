package options

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Paths", func() {
	It("protects everything by default", func() {
		opts := NewOptions()
		Expect(opts.Paths.ProtectedPaths).To(ConsistOf(MatchEverything))
		Expect(opts.Paths.PublicPaths).To(BeEmpty())
	})

	It("lists the control paths in a fixed order", func() {
		Expect(NewOptions().ControlPaths()).To(Equal([]string{
			"/canvas-auth-login",
			"/canvas-auth-token",
			"/canvas-auth-logout",
			"/logged-out",
			"/unauthorized",
			"/login-failure",
		}))
	})

	It("replaces the protected patterns with Authenticate", func() {
		opts := NewOptions()
		opts.Authenticate("/grades", "regex:/courses/[0-9]+")
		Expect(opts.Paths.ProtectedPaths).To(Equal([]string{"/grades", "regex:/courses/[0-9]+"}))

		opts.Authenticate()
		Expect(opts.Paths.ProtectedPaths).To(BeEmpty())
	})
})
