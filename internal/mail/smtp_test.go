package mail

import (
	"bufio"
	"encoding/json"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTPServer speaks just enough SMTP for one connection test.
func fakeSMTPServer(t *testing.T, withAuth bool) (host string, port int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		w := bufio.NewWriter(conn)
		r := bufio.NewReader(conn)
		w.WriteString("220 test ESMTP\r\n")
		w.Flush()

		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			switch {
			case strings.HasPrefix(line, "EHLO"), strings.HasPrefix(line, "HELO"):
				if withAuth {
					w.WriteString("250-test\r\n250 AUTH PLAIN\r\n")
				} else {
					w.WriteString("250 test\r\n")
				}
			case strings.HasPrefix(line, "AUTH PLAIN"):
				w.WriteString("235 authenticated\r\n")
			case strings.HasPrefix(line, "QUIT"):
				w.WriteString("221 bye\r\n")
				w.Flush()
				return
			default:
				w.WriteString("502 not implemented\r\n")
			}
			w.Flush()
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

func TestConnectionSucceeds(t *testing.T) {
	host, port := fakeSMTPServer(t, false)

	res := TestConnection(TestRequest{Host: host, Port: port})
	assert.True(t, res.Success, res.Error)
	assert.Equal(t, "SMTP connection successful", res.Message)
	assert.Empty(t, res.Error)
}

func TestConnectionAuthenticates(t *testing.T) {
	host, port := fakeSMTPServer(t, true)

	req := TestRequest{Host: host, Port: port}
	req.Auth.User = "mailer"
	req.Auth.Pass = "s3cret"

	res := TestConnection(req)
	assert.True(t, res.Success, res.Error)
}

func TestConnectionRefused(t *testing.T) {
	// Grab a free port and close it again so nothing listens there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	res := TestConnection(TestRequest{Host: "127.0.0.1", Port: port})
	assert.False(t, res.Success)
	assert.Equal(t, "connection failed", res.Message)
	assert.NotEmpty(t, res.Error)
}

func TestRequestWireFormat(t *testing.T) {
	var req TestRequest
	err := json.Unmarshal([]byte(
		`{"host":"smtp.example.com","port":465,"secure":true,"auth":{"user":"u","pass":"p"}}`,
	), &req)
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com", req.Host)
	assert.Equal(t, 465, req.Port)
	assert.True(t, req.Secure)
	assert.Equal(t, "u", req.Auth.User)
	assert.Equal(t, "p", req.Auth.Pass)
}
