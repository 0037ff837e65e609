package mailer

import (
	"context"

	gomail "gopkg.in/gomail.v2"

	"activity-hours/backend/config"
)

// Mailer 邮件发送接口
// Worker 只依赖该接口，单元测试中用假实现替换 SMTP
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer 基于 SMTP 的 Mailer 实现
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer 创建 SMTP Mailer
func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send 投递一封邮件
// gomail 不支持 context，这里在 goroutine 中投递并对 ctx 超时/取消做出响应；
// 超时返回后投递可能仍在后台完成，属于至少一次语义下可接受的重复风险
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
