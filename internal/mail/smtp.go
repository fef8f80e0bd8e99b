package mail

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"
)

// TestRequest mirrors the payload of the SMTP connectivity test function:
// {host, port, secure, auth:{user,pass}}.
type TestRequest struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Secure bool   `json:"secure"`
	Auth   struct {
		User string `json:"user"`
		Pass string `json:"pass"`
	} `json:"auth"`
}

type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

const dialTimeout = 10 * time.Second

// TestConnection dials the SMTP server, negotiates TLS (implicit for
// secure=true, STARTTLS otherwise when offered) and authenticates if
// credentials were supplied. It never sends mail.
func TestConnection(req TestRequest) TestResult {
	addr := fmt.Sprintf("%s:%d", req.Host, req.Port)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return TestResult{Message: "connection failed", Error: err.Error()}
	}

	if req.Secure {
		conn = tls.Client(conn, &tls.Config{ServerName: req.Host})
	}

	client, err := smtp.NewClient(conn, req.Host)
	if err != nil {
		conn.Close()
		return TestResult{Message: "SMTP handshake failed", Error: err.Error()}
	}
	defer client.Close()

	if !req.Secure {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: req.Host}); err != nil {
				return TestResult{Message: "STARTTLS failed", Error: err.Error()}
			}
		}
	}

	if req.Auth.User != "" {
		auth := smtp.PlainAuth("", req.Auth.User, req.Auth.Pass, req.Host)
		if err := client.Auth(auth); err != nil {
			return TestResult{Message: "authentication failed", Error: err.Error()}
		}
	}

	_ = client.Quit()
	return TestResult{Success: true, Message: "SMTP connection successful"}
}
