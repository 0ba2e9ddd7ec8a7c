package service

import (
	"fmt"
	"time"
)

func verificationCodeEmailTemplate(name, code, appName string, expiry time.Duration) (string, string) {
	subject := fmt.Sprintf("Your %s verification code", appName)
	body := fmt.Sprintf(`Hi %s,

Your verification code is:

%s

Enter this code to verify your email address. The code expires in %d minutes.

If you didn't create an account, you can safely ignore this email.

Best,
The %s Team`, name, code, int(expiry.Minutes()), appName)

	return subject, body
}

func welcomeEmailTemplate(name, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your email is verified and your account is active!

Start by adding your income and expense categories, then record your first transaction.

Best,
The %s Team`, name, appName)

	return subject, body
}
