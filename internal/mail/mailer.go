// Package mail envia os e-mails transacionais do sistema via SMTP.
package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	smtp "github.com/xhit/go-simple-mail/v2"

	"github.com/gabinetefacil/gabinete/internal/config"
)

// Mailer entrega e-mails de convite e avisos do gabinete.
type Mailer struct {
	cfg  config.MailConfig
	from string
}

// NewMailer cria o mailer a partir da configuração SMTP.
func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{
		cfg:  cfg,
		from: fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From),
	}
}

// SendInvite envia a senha temporária ao novo membro.
func (m *Mailer) SendInvite(ctx context.Context, email, nome, tempPassword string) error {
	subject := "Bem-vindo ao Gabinete Fácil"
	body := fmt.Sprintf(`<p>Olá, %s!</p>
<p>Sua conta foi criada. Use a senha temporária abaixo no primeiro acesso e troque-a em seguida.</p>
<p><strong>%s</strong></p>
<p>Equipe Gabinete Fácil</p>`, nome, tempPassword)

	return m.send(ctx, nome, email, subject, body)
}

// SendExpirationNotice avisa o dono que o gabinete venceu.
func (m *Mailer) SendExpirationNotice(ctx context.Context, email, nome, gabineteNome string) error {
	subject := "Assinatura do gabinete vencida"
	body := fmt.Sprintf(`<p>Olá, %s!</p>
<p>A assinatura do gabinete <strong>%s</strong> venceu e o acesso da equipe foi suspenso.</p>
<p>Renove para voltar a usar o sistema.</p>
<p>Equipe Gabinete Fácil</p>`, nome, gabineteNome)

	return m.send(ctx, nome, email, subject, body)
}

func (m *Mailer) send(ctx context.Context, toName, toEmail, subject, body string) error {
	client, err := m.connect()
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("mail: falha ao fechar conexão SMTP")
		}
	}()

	msg := smtp.NewMSG().
		SetFrom(m.from).
		AddTo(fmt.Sprintf("%s <%s>", toName, strings.TrimSpace(toEmail))).
		SetSubject(subject).
		SetBody(smtp.TextHTML, body)
	if msg.Error != nil {
		return msg.Error
	}

	done := make(chan error, 1)
	go func() { done <- msg.Send(client) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mailer) connect() (*smtp.SMTPClient, error) {
	server := smtp.NewSMTPClient()
	server.Host = m.cfg.Host
	server.Port = m.cfg.Port
	server.Username = m.cfg.Username
	server.Password = m.cfg.Password

	switch m.cfg.Port {
	case 465:
		server.Encryption = smtp.EncryptionSSL
	case 587:
		server.Encryption = smtp.EncryptionSTARTTLS
	default:
		server.Encryption = smtp.EncryptionNone
	}

	server.Authentication = smtp.AuthLogin
	server.KeepAlive = false
	server.ConnectTimeout = 30 * time.Second
	server.SendTimeout = 30 * time.Second

	return server.Connect()
}
