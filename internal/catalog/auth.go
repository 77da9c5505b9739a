package catalog

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

// AuthMethod selects how the catalog connection authenticates.
type AuthMethod string

const (
	AuthStandard AuthMethod = "standard" // password from the connection string, $PGPASSWORD or ~/.pgpass
	AuthAWSIAM   AuthMethod = "aws-iam"  // RDS IAM token as password
	AuthAzure    AuthMethod = "azure"    // Entra ID token as password
	AuthGoogle   AuthMethod = "google"   // Cloud SQL connector with IAM authentication
)

// AzurePostgreSQLScope is the OAuth scope for Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"

// tokenExpiryWarning is how close to expiry a fresh token is reported.
const tokenExpiryWarning = 5 * time.Minute

// ParseAuthMethod validates an auth method name. "" means AuthStandard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch m := AuthMethod(s); m {
	case "":
		return AuthStandard, nil
	case AuthStandard, AuthAWSIAM, AuthAzure, AuthGoogle:
		return m, nil
	}
	return "", fmt.Errorf("unknown catalog auth method %q (want standard, aws-iam, azure or google): %w", s, kettle.ErrInvalidConfig)
}

// Auth holds the authentication settings of a catalog connection.
type Auth struct {
	Method AuthMethod

	// AWSRegion is required for AuthAWSIAM.
	AWSRegion string

	// Instance is the Cloud SQL instance connection name
	// (project:region:instance), required for AuthGoogle.
	Instance string
}

// TokenProvider acquires short-lived tokens used as the PostgreSQL password.
type TokenProvider interface {
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider for logs. It must not include secrets.
	String() string
}

// AWSIAMTokenProvider builds RDS IAM authentication tokens from the default
// AWS credential chain.
type AWSIAMTokenProvider struct {
	endpoint string // host:port
	region   string
	username string
}

// NewAWSIAMTokenProvider creates a provider for the RDS endpoint (host:port).
func NewAWSIAMTokenProvider(endpoint, region, username string) (*AWSIAMTokenProvider, error) {
	switch {
	case endpoint == "":
		return nil, fmt.Errorf("AWS IAM auth requires an endpoint (host:port): %w", kettle.ErrInvalidConfig)
	case region == "":
		return nil, fmt.Errorf("AWS IAM auth requires a region (catalog.aws_region or $AWS_REGION): %w", kettle.ErrInvalidConfig)
	case username == "":
		return nil, fmt.Errorf("AWS IAM auth requires a database user in the connection string: %w", kettle.ErrInvalidConfig)
	}
	return &AWSIAMTokenProvider{endpoint: endpoint, region: region, username: username}, nil
}

// GetToken builds a token valid for 15 minutes.
func (p *AWSIAMTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(p.region))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.username, cfg.Credentials)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build RDS auth token: %w", err)
	}
	return token, time.Now().Add(15 * time.Minute), nil
}

func (p *AWSIAMTokenProvider) String() string {
	return fmt.Sprintf("AWSIAM(endpoint=%s, region=%s, user=%s)", p.endpoint, p.region, p.username)
}

// AzureTokenProvider acquires Entra ID tokens through DefaultAzureCredential
// (environment, workload identity, managed identity, Azure CLI).
type AzureTokenProvider struct {
	credential azcore.TokenCredential
}

// NewAzureTokenProvider creates a provider using the default credential chain.
func NewAzureTokenProvider() (*AzureTokenProvider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
	}
	return &AzureTokenProvider{credential: cred}, nil
}

func (p *AzureTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{AzurePostgreSQLScope},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("azure token acquisition failed: %w", err)
	}
	return token.Token, token.ExpiresOn, nil
}

func (p *AzureTokenProvider) String() string {
	return "AzureDefaultCredential"
}

// configureAuth prepares poolConfig for the auth method. The returned
// function releases resources that must outlive the pool; it is never nil.
func configureAuth(ctx context.Context, poolConfig *pgxpool.Config, a Auth, logger kettle.Logger) (func(), error) {
	noop := func() {}
	cc := poolConfig.ConnConfig

	switch a.Method {
	case "", AuthStandard:
		return noop, nil

	case AuthAWSIAM:
		endpoint := net.JoinHostPort(cc.Host, strconv.Itoa(int(cc.Port)))
		provider, err := NewAWSIAMTokenProvider(endpoint, a.AWSRegion, cc.User)
		if err != nil {
			return nil, err
		}
		useTokenProvider(poolConfig, provider, logger)
		return noop, nil

	case AuthAzure:
		provider, err := NewAzureTokenProvider()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", kettle.ErrCatalog, err)
		}
		useTokenProvider(poolConfig, provider, logger)
		return noop, nil

	case AuthGoogle:
		if a.Instance == "" {
			return nil, fmt.Errorf("google auth requires a Cloud SQL instance (project:region:instance): %w", kettle.ErrInvalidConfig)
		}
		dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
		if err != nil {
			return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w: %w", kettle.ErrCatalog, err)
		}
		// The connector encrypts the connection itself.
		cc.TLSConfig = nil
		cc.Fallbacks = nil
		cc.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.Dial(ctx, a.Instance)
		}
		logger.Verbose("catalog: dialing Cloud SQL instance %s", a.Instance)
		return func() { dialer.Close() }, nil
	}

	return nil, fmt.Errorf("unknown catalog auth method %q: %w", a.Method, kettle.ErrInvalidConfig)
}

// useTokenProvider sets a fresh token as the password of every new pool
// connection, so long-lived pools survive token expiry.
func useTokenProvider(poolConfig *pgxpool.Config, provider TokenProvider, logger kettle.Logger) {
	logger.Verbose("catalog: authenticating with %s", provider)
	poolConfig.BeforeConnect = func(ctx context.Context, cc *pgx.ConnConfig) error {
		token, expiresOn, err := provider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire token from %s: %w", provider, err)
		}
		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			logger.Info("Warning: %s token expires in %v", provider, remaining.Round(time.Second))
		}
		cc.Password = token
		return nil
	}
}
