package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"strings"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/types"
)

const shortlistTemplate = `<html>
<body>
    <h2>Candidate Shortlisted</h2>
    <p>A candidate has matched your job requirements.</p>

    <h3>Match Details</h3>
    <ul>
        <li><strong>Match Score:</strong> {{.Score}}%</li>
        <li><strong>Matching Skills:</strong> {{.Skills}}</li>
    </ul>

    <h3>Candidate Details</h3>
    <ul>
        <li><strong>Name:</strong> {{.Name}}</li>
        <li><strong>Email:</strong> {{.Email}}</li>
        <li><strong>Phone:</strong> {{.Phone}}</li>
    </ul>

    <p><em>This is an automated message from TalentScout AI.</em></p>
</body>
</html>
`

var shortlistTmpl = template.Must(template.New("shortlist").Parse(shortlistTemplate))

// Subject 通知邮件标题
func Subject(score int) string {
	return fmt.Sprintf("Candidate Shortlisted: Match Score %d%%", score)
}

// RenderBody 生成 HTML 正文，缺失字段显示为 N/A
func RenderBody(notice ShortlistNotice) (string, error) {
	data := struct {
		Score  int
		Skills string
		Name   string
		Email  string
		Phone  string
	}{
		Score:  notice.Score,
		Skills: strings.Join(notice.MatchingSkills, ", "),
		Name:   orNA(notice.Candidate.Name),
		Email:  orNA(notice.Candidate.Email),
		Phone:  orNA(notice.Candidate.Phone),
	}
	var buf bytes.Buffer
	if err := shortlistTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("渲染邮件正文失败: %w", err)
	}
	return buf.String(), nil
}

func orNA(s *string) string {
	if v := types.StringValue(s); v != "" {
		return v
	}
	return "N/A"
}

// SendMailFunc 与 smtp.SendMail 签名一致，测试时替换
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier 通过 SMTP 发送 HTML 邮件，服务器支持时自动 STARTTLS
type SMTPNotifier struct {
	host     string
	port     int
	sender   string
	password string
	sendMail SendMailFunc
}

var _ Notifier = (*SMTPNotifier)(nil)

func NewSMTPNotifier(cfg config.NotifierConfig) *SMTPNotifier {
	return &SMTPNotifier{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		sender:   cfg.SenderEmail,
		password: cfg.SenderPassword,
		sendMail: smtp.SendMail,
	}
}

// WithSendMail 替换底层发送函数
func (n *SMTPNotifier) WithSendMail(fn SendMailFunc) *SMTPNotifier {
	n.sendMail = fn
	return n
}

func (n *SMTPNotifier) NotifyShortlist(ctx context.Context, notice ShortlistNotice) error {
	if notice.RecruiterEmail == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := RenderBody(notice)
	if err != nil {
		return err
	}
	msg := buildMessage(n.sender, notice.RecruiterEmail, Subject(notice.Score), body)

	addr := n.host + ":" + strconv.Itoa(n.port)
	var auth smtp.Auth
	if n.password != "" {
		auth = smtp.PlainAuth("", n.sender, n.password, n.host)
	}
	if err := n.sendMail(addr, auth, n.sender, []string{notice.RecruiterEmail}, msg); err != nil {
		return fmt.Errorf("发送邮件到 %s 失败: %w", notice.RecruiterEmail, err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
