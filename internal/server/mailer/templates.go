package mailer

import (
	"fmt"
	"net/url"
	"strings"
)

// Link builds "<frontend>/<path>?token=<token>".
func Link(frontendURL, path, token string) string {
	return fmt.Sprintf("%s/%s?token=%s", strings.TrimRight(frontendURL, "/"), strings.TrimLeft(path, "/"), url.QueryEscape(token))
}

func ActivationMessage(to, name, link string, validMinutes int) Message {
	return Message{
		To:      to,
		Subject: "Set your password",
		Body: fmt.Sprintf("Hello %s,\n\nAn account has been created for you. Set your password here:\n%s\n\n"+
			"The link is valid for %d minutes.\n", name, link, validMinutes),
	}
}

func ResetMessage(to, name, link string, validMinutes int) Message {
	return Message{
		To:      to,
		Subject: "Reset your password",
		Body: fmt.Sprintf("Hello %s,\n\nUse this link to reset your password:\n%s\n\n"+
			"The link is valid for %d minutes. If you did not ask for it, ignore this email.\n", name, link, validMinutes),
	}
}
