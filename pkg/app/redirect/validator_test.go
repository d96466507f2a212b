package redirect

import (
	"bufio"
	"net/url"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Validator suite", func() {
	var testAllowedDomains []string

	BeforeEach(func() {
		testAllowedDomains = []string{
			"canvas.test",
			".instructure.test",
			"port.canvas:8443",
			".sub.port.canvas:8443",
			"anyport.canvas:*",
			"*.wildcard.canvas",
		}
	})

	Context("OpenRedirect List", func() {
		file, err := os.Open("testdata/openredirects.txt")
		Expect(err).ToNot(HaveOccurred())
		defer func() {
			Expect(file.Close()).To(Succeed())
		}()

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			rd := scanner.Text()
			It(rd, func() {
				rdUnescaped, err := url.QueryUnescape(rd)
				Expect(err).ToNot(HaveOccurred())

				validator := NewValidator(testAllowedDomains)
				Expect(validator.IsValidRedirect(rdUnescaped)).To(BeFalse(), "Expected redirect not to be valid")
			})
		}

		Expect(scanner.Err()).ToNot(HaveOccurred())
	})

	DescribeTable("IsValidRedirect",
		func(testRedirect string, expected bool) {
			validator := NewValidator(testAllowedDomains)
			Expect(validator.IsValidRedirect(testRedirect)).To(Equal(expected))
		},
		Entry("No Redirect", "", false),
		Entry("Single Slash", "/courses", true),
		Entry("Path with query", "/app/courses?page=2", true),
		Entry("Double Slash", "//courses", false),
		Entry("Valid HTTPS", "https://canvas.test/courses", true),
		Entry("Invalid HTTPS subdomain", "https://evil.canvas.test/courses", false),
		Entry("Valid HTTPS subdomain", "https://school.instructure.test/courses", true),
		Entry("Valid root of subdomain pattern", "https://instructure.test/courses", true),
		Entry("Invalid Similar Domain", "https://canvas.test.evil.corp/courses", false),
		Entry("Invalid Port on Allowed Domain", "https://canvas.test:3838/courses", false),
		Entry("Valid Specified Port", "https://port.canvas:8443/courses", true),
		Entry("Invalid Specified Port", "https://port.canvas:3838/courses", false),
		Entry("Valid Specified Port Subdomain", "https://a.sub.port.canvas:8443/courses", true),
		Entry("Valid Any Port", "https://anyport.canvas:9000/courses", true),
		Entry("Valid Wildcard Subdomain", "https://a.wildcard.canvas/courses", true),
		Entry("Escape Double Slash", "/\\evil.com", false),
		Entry("Tab Single Slash", "/\t/evil.com", false),
		Entry("Relative Subpath", "/./../../\\evil.com", false),
		Entry("Missing Protocol", "canvas.test/courses", false),
	)
})
