package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-c/-config json file path with configs
//	-identity-url identity provider base URL
//	-identity-api-key identity provider public API key
//	-jwt-secret shared secret for verifying provider-issued tokens
//	-jwt-issuer expected issuer of provider-issued tokens
//	-backend-address backend API address used by the client
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-refresh-interval background conversation refresh interval
//	-openai-model chat-completion model name
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var jsonConfigPath string
	var identityURL string
	var identityAPIKey string
	var jwtSecret string
	var jwtIssuer string
	var backendAddress string
	var requestTimeout time.Duration
	var refreshInterval time.Duration
	var openAIModel string

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&identityURL, "identity-url", "", "Identity provider base URL")
	flag.StringVar(&identityAPIKey, "identity-api-key", "", "Identity provider API key")
	flag.StringVar(&jwtSecret, "jwt-secret", "", "Access token verification secret")
	flag.StringVar(&jwtIssuer, "jwt-issuer", "", "Expected access token issuer")
	flag.StringVar(&backendAddress, "backend-address", "", "Backend API address")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&refreshInterval, "refresh-interval", 0, "Conversation refresh interval")
	flag.StringVar(&openAIModel, "openai-model", "", "Chat-completion model name")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			OpenAIModel: openAIModel,
		},
		Identity: Identity{
			URL:       identityURL,
			APIKey:    identityAPIKey,
			JWTSecret: jwtSecret,
			JWTIssuer: jwtIssuer,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    backendAddress,
			RequestTimeout: requestTimeout,
		},
		Workers:      Workers{RefreshInterval: refreshInterval},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
