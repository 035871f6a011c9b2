// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"net"
	"net/http"

	utls "github.com/refraction-networking/utls"
)

// Fingerprint names the TLS ClientHello the fetcher presents.
type Fingerprint string

const (
	FingerprintGo      Fingerprint = "go"
	FingerprintChrome  Fingerprint = "chrome"
	FingerprintFirefox Fingerprint = "firefox"
	FingerprintSafari  Fingerprint = "safari"
)

// Transport returns a RoundTripper whose TLS handshake mimics the given
// browser. FingerprintGo (or "") returns a clone of the default transport.
//
// The browser ClientHello is rewritten to offer only http/1.1 in ALPN: the
// transport reads responses as HTTP/1.1 and must not negotiate h2.
func Transport(fp Fingerprint) (http.RoundTripper, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	var helloID utls.ClientHelloID
	switch fp {
	case "", FingerprintGo:
		return transport, nil
	case FingerprintChrome:
		helloID = utls.HelloChrome_Auto
	case FingerprintFirefox:
		helloID = utls.HelloFirefox_Auto
	case FingerprintSafari:
		helloID = utls.HelloIOS_Auto
	default:
		return nil, fmt.Errorf("unknown TLS fingerprint %q", fp)
	}

	dialer := &net.Dialer{}
	transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		tcpConn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		spec, err := utls.UTLSIdToSpec(helloID)
		if err != nil {
			_ = tcpConn.Close()
			return nil, fmt.Errorf("building %s client hello: %w", fp, err)
		}
		for _, ext := range spec.Extensions {
			if alpn, ok := ext.(*utls.ALPNExtension); ok {
				alpn.AlpnProtocols = []string{"http/1.1"}
			}
		}

		uConn := utls.UClient(tcpConn, &utls.Config{ServerName: host}, utls.HelloCustom)
		if err := uConn.ApplyPreset(&spec); err != nil {
			_ = tcpConn.Close()
			return nil, fmt.Errorf("applying %s client hello: %w", fp, err)
		}
		if err := uConn.HandshakeContext(ctx); err != nil {
			_ = tcpConn.Close()
			return nil, fmt.Errorf("utls handshake failed: %w", err)
		}
		return uConn, nil
	}
	return transport, nil
}
