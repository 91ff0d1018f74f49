// Package notify sends transactional email. Without SMTP settings it logs the
// message instead (dev mode).
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"

	"rentkit/config"
)

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message.
type Sender interface {
	Send(m Message) error
}

// Mailer renders notifications and hands them to a Sender.
type Mailer struct {
	AppName string
	Origin  string // web origin for links
	sender  Sender
	log     *logrus.Logger
}

func New(cfg config.Config, logger *logrus.Logger) *Mailer {
	var s Sender = devSender{log: logger}
	if cfg.SMTP.Host != "" && (cfg.SMTP.Username != "" || cfg.SMTP.From != "") {
		s = newSMTPSender(cfg.SMTP, cfg.AppName, logger)
	}
	return NewWithSender(cfg.AppName, cfg.WebOrigin, s, logger)
}

func NewWithSender(appName, origin string, s Sender, logger *logrus.Logger) *Mailer {
	if appName == "" {
		appName = "RentKit"
	}
	return &Mailer{AppName: appName, Origin: origin, sender: s, log: logger}
}

// BookingRequest is what the owner sees when someone asks to rent their item.
type BookingRequest struct {
	OwnerEmail    string
	OwnerName     string
	RenterName    string
	EquipmentName string
	StartDate     string
	EndDate       string
	TotalDays     int
	OwnerEarnings float64
	Message       string
	Link          string
}

var bookingTmpl = template.Must(template.New("booking").Parse(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>Hello {{.OwnerName}},</p>
  <p><b>{{.RenterName}}</b> would like to rent your <b>{{.EquipmentName}}</b>
  from {{.StartDate}} to {{.EndDate}} ({{.TotalDays}} day{{if ne .TotalDays 1}}s{{end}}).</p>
  <p>You would earn <b>&pound;{{printf "%.2f" .OwnerEarnings}}</b>.</p>
  {{if .Message}}<blockquote style="color:#555">{{.Message}}</blockquote>{{end}}
  <p>
    <a href="{{.Link}}" style="display:inline-block; padding:10px 16px; background:#2563EB; color:#fff; text-decoration:none; border-radius:6px;">
      Review request
    </a>
  </p>
  <hr/>
  <p style="color:#666">You are receiving this because you list equipment on {{.AppName}}.</p>
</div>
`))

// BuildBookingRequest renders the owner notification.
func (m *Mailer) BuildBookingRequest(b BookingRequest) (Message, error) {
	var buf bytes.Buffer
	data := struct {
		BookingRequest
		AppName string
	}{b, m.AppName}
	if err := bookingTmpl.Execute(&buf, data); err != nil {
		return Message{}, err
	}
	return Message{
		To:      b.OwnerEmail,
		Subject: fmt.Sprintf("%s: new booking request for %s", m.AppName, b.EquipmentName),
		HTML:    buf.String(),
	}, nil
}

// NotifyBookingRequest never fails the caller; delivery errors are logged.
func (m *Mailer) NotifyBookingRequest(b BookingRequest) {
	msg, err := m.BuildBookingRequest(b)
	if err != nil {
		m.log.WithError(err).Error("render booking email")
		return
	}
	if err := m.sender.Send(msg); err != nil {
		m.log.WithError(err).WithField("to", msg.To).Warn("booking email send failed")
	}
}

type devSender struct{ log *logrus.Logger }

func (d devSender) Send(m Message) error {
	d.log.WithFields(logrus.Fields{"to": m.To, "subject": m.Subject}).Info("[DEV] email not sent, SMTP is not configured")
	return nil
}

type smtpSender struct {
	conf    config.SMTPConfig
	appName string
	dialer  *gomail.Dialer
	cb      *gobreaker.CircuitBreaker
}

func newSMTPSender(conf config.SMTPConfig, appName string, logger *logrus.Logger) *smtpSender {
	return &smtpSender{
		conf:    conf,
		appName: appName,
		dialer:  gomail.NewDialer(conf.Host, conf.Port, conf.Username, conf.Password),
		cb:      newBreaker(logger),
	}
}

func (s *smtpSender) Send(m Message) error {
	from := s.conf.From
	if from == "" {
		from = s.conf.Username
	}
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", from, s.appName)
	gm.SetHeader("To", m.To)
	gm.SetHeader("Subject", m.Subject)
	gm.SetBody("text/html", m.HTML)
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.dialer.DialAndSend(gm)
	})
	return err
}

// newBreaker stops dialing the mail server after three failed sends in a row
// and tries again after a minute.
func newBreaker(logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("mail circuit breaker state changed")
		},
	})
}
