package authorization

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/apis/sessions"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("UsersFile", func() {
	var (
		path    string
		done    chan bool
		updated chan bool
	)

	writeUsers := func(p string, lines ...string) {
		Expect(os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0600)).To(Succeed())
	}

	authorized := func(u *UsersFile, userID string) bool {
		return u.Authorized(context.Background(), &sessions.SessionState{UserID: userID})
	}

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "authorized-users")
		done = make(chan bool)
		updated = make(chan bool, 16)
	})

	AfterEach(func() {
		close(done)
	})

	newUsersFile := func() *UsersFile {
		u, err := NewUsersFile(path, done, func() {
			select {
			case updated <- true:
			default:
			}
		})
		Expect(err).ToNot(HaveOccurred())
		return u
	}

	It("authorizes listed users only", func() {
		writeUsers(path, "# staff", "101", "  202", "303,teacher")
		u := newUsersFile()

		Expect(authorized(u, "101")).To(BeTrue())
		Expect(authorized(u, "202")).To(BeTrue())
		Expect(authorized(u, "303")).To(BeTrue())
		Expect(authorized(u, "404")).To(BeFalse())
		Expect(authorized(u, "# staff")).To(BeFalse())
	})

	It("rejects sessions without a user", func() {
		writeUsers(path, "101")
		u := newUsersFile()

		Expect(authorized(u, "")).To(BeFalse())
		Expect(u.Authorized(context.Background(), nil)).To(BeFalse())
	})

	It("fails when the file does not exist", func() {
		_, err := NewUsersFile(filepath.Join(GinkgoT().TempDir(), "missing"), done, nil)
		Expect(err).To(MatchError(ContainSubstring("could not open authorized users file")))
	})

	It("reloads the file when it is overwritten", func() {
		writeUsers(path, "101", "202")
		u := newUsersFile()
		Expect(authorized(u, "101")).To(BeTrue())

		writeUsers(path, "202", "303")
		Eventually(updated, 5*time.Second).Should(Receive())

		Eventually(func() bool { return authorized(u, "303") }, 5*time.Second).Should(BeTrue())
		Eventually(func() bool { return authorized(u, "101") }, 5*time.Second).Should(BeFalse())
		Expect(authorized(u, "202")).To(BeTrue())
	})

	It("reloads the file when it is replaced by a rename", func() {
		writeUsers(path, "101")
		u := newUsersFile()

		replacement := path + ".new"
		writeUsers(replacement, "909")
		Expect(os.Rename(replacement, path)).To(Succeed())

		Eventually(func() bool { return authorized(u, "909") }, 5*time.Second).Should(BeTrue())
		Expect(authorized(u, "101")).To(BeFalse())
	})
})
