package notifier

import (
	"fmt"
	"time"
)

// DefaultEndpoint is the Kavenegar REST base URL
const DefaultEndpoint = "https://api.kavenegar.com/v1"

func messageDate(t time.Time) string {
	return t.Format("2006/01/02")
}

// AbsentMessage notifies a guardian about an absence
func AbsentMessage(studentName string, date time.Time) string {
	return fmt.Sprintf("Student %s was absent on %s.", studentName, messageDate(date))
}

// LateMessage notifies a guardian about a late arrival
func LateMessage(studentName string, date time.Time) string {
	return fmt.Sprintf("Student %s arrived late on %s.", studentName, messageDate(date))
}

// WelcomeMessage greets a newly created account holder
func WelcomeMessage(name, schoolName, username string) string {
	return fmt.Sprintf("Hello %s, welcome to the %s school administration system. Username: %s", name, schoolName, username)
}

// PasswordResetMessage carries a reset code
func PasswordResetMessage(code string) string {
	return fmt.Sprintf("Your password reset code: %s", code)
}
