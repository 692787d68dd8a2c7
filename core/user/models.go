package user

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/semillerodigital/insights/core"
)

// Roles
const (
	RoleCoordinator = "coordinator"
	RoleProfessor   = "professor"
	RoleStudent     = "student"
)

var (
	AllRoles = []string{RoleCoordinator, RoleProfessor, RoleStudent}

	// substrings of an email local part that mark a professor account
	professorMarkers = []string{"profesor", "teacher", "prof"}

	rolePriorities = map[string]int{
		RoleCoordinator: 30,
		RoleProfessor:   20,
		RoleStudent:     10,
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func IsValidRole(role string) bool {
	return lo.Contains(AllRoles, role)
}

// User is the authenticated principal of a dashboard request.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (u User) IsCoordinator() bool { return u.Role == RoleCoordinator }
func (u User) IsProfessor() bool   { return u.Role == RoleProfessor }
func (u User) IsStudent() bool     { return u.Role == RoleStudent }

// HasAnyRole reports whether the user holds one of roles.
// A coordinator passes every role check.
func (u User) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 || u.IsCoordinator() {
		return true
	}
	return lo.Contains(roles, u.Role)
}

// DetectRole derives the role of an email address:
// listed coordinators first, then professor-looking addresses, students otherwise.
func DetectRole(email string, coordinatorEmails []string) string {
	email = core.CleanString(email, true /* lower */)
	if lo.ContainsBy(coordinatorEmails, func(e string) bool { return core.CleanString(e, true) == email }) {
		return RoleCoordinator
	}
	for _, marker := range professorMarkers {
		if strings.Contains(email, marker) {
			return RoleProfessor
		}
	}
	return RoleStudent
}

// NameFromEmail builds a display name from the local part of an email address.
func NameFromEmail(email string) string {
	local := strings.SplitN(core.CleanString(email), "@", 2)[0]
	words := strings.FieldsFunc(local, func(r rune) bool { return r == '.' || r == '_' || r == '-' })
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if size == 0 {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}

// New returns the User for email, detecting their role.
func New(email, name string, coordinatorEmails []string) User {
	email = core.CleanString(email, true /* lower */)
	if name = core.CleanString(name); name == "" {
		name = NameFromEmail(email)
	}
	return User{
		Email: email,
		Name:  name,
		Role:  DetectRole(email, coordinatorEmails),
	}
}
