// Package mail sends transactional mail such as password reset links.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"text/template"
)

// Message is a plain-text mail.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

const resetSubject = "[마음상담 허브] 비밀번호 재설정 안내"

var resetTemplate = template.Must(template.New("reset").Parse(`{{.Name}}님, 안녕하세요.

비밀번호 재설정 요청이 접수되었습니다.
아래 링크에서 새 비밀번호를 설정해 주세요. 링크는 {{.ValidFor}} 동안 유효합니다.

{{.Link}}

본인이 요청하지 않았다면 이 메일을 무시하셔도 됩니다.
`))

// ResetMail holds the values rendered into a password reset message.
type ResetMail struct {
	Name     string
	Link     string
	ValidFor string
}

// ResetLink appends the token to base as the "token" query parameter.
func ResetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse reset url base: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// NewResetMessage renders the password reset mail.
func NewResetMessage(from, to string, data ResetMail) (Message, error) {
	var buf bytes.Buffer
	if err := resetTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render reset mail: %w", err)
	}
	return Message{From: from, To: to, Subject: resetSubject, Text: buf.String()}, nil
}
