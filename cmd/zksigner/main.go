package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/Layr-Labs/zksync-signer-go/pkg/config"
	"github.com/Layr-Labs/zksync-signer-go/pkg/crypto"
	"github.com/Layr-Labs/zksync-signer-go/pkg/keystore"
	"github.com/Layr-Labs/zksync-signer-go/pkg/logger"
	"github.com/Layr-Labs/zksync-signer-go/pkg/persistence"
	"github.com/Layr-Labs/zksync-signer-go/pkg/persistence/journal"
	"github.com/Layr-Labs/zksync-signer-go/pkg/transactionEncoder"
	"github.com/Layr-Labs/zksync-signer-go/pkg/zkSigner"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func signerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Uint64Flag{
			Name:    "chain-id",
			Aliases: []string{"chain"},
			Usage:   fmt.Sprintf("Ethereum chain ID: %s", config.GetSupportedChainIDsString()),
			Value:   uint64(config.ChainId_Mainnet),
			EnvVars: []string{config.EnvChainID},
		},
		&cli.StringFlag{
			Name:    "seed",
			Usage:   "Hex seed of at least 32 bytes to derive the signing key from",
			EnvVars: []string{config.EnvSeed},
		},
		&cli.StringFlag{
			Name:    "raw-private-key",
			Usage:   "Hex raw signing key previously exported from a seed",
			EnvVars: []string{config.EnvRawPrivateKey},
		},
		&cli.StringFlag{
			Name:    "keystore-path",
			Usage:   "Path to an encrypted signing key file",
			EnvVars: []string{config.EnvKeystorePath},
		},
		&cli.StringFlag{
			Name:    "keystore-password",
			Usage:   "Password of the encrypted signing key file",
			EnvVars: []string{config.EnvKeystorePassword},
		},
		&cli.StringFlag{
			Name:    "eth-private-key",
			Usage:   "Ethereum private key whose signature derives the signing key",
			EnvVars: []string{config.EnvEthPrivateKey},
		},
		&cli.StringFlag{
			Name:    "aws-kms-key-id",
			Usage:   "AWS KMS secp256k1 key whose signature derives the signing key",
			EnvVars: []string{config.EnvAWSKMSKeyId},
		},
		&cli.StringFlag{
			Name:    "aws-region",
			Usage:   "AWS region of the KMS key",
			EnvVars: []string{config.EnvAWSRegion},
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Usage:   "Enable verbose logging",
			EnvVars: []string{config.EnvVerbose},
		},
	}
}

func journalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "journal",
			Usage:   "Signature journal backend: none, badger or redis",
			Value:   string(config.JournalTypeNone),
			EnvVars: []string{config.EnvJournalType},
		},
		&cli.StringFlag{
			Name:    "journal-data-path",
			Usage:   "Badger journal directory",
			EnvVars: []string{config.EnvJournalDataPath},
		},
		&cli.StringFlag{
			Name:    "journal-redis-address",
			Usage:   "Redis journal address (host:port)",
			EnvVars: []string{config.EnvJournalRedisAddr},
		},
		&cli.StringFlag{
			Name:    "journal-redis-password",
			Usage:   "Redis journal password",
			EnvVars: []string{config.EnvJournalRedisPass},
		},
		&cli.IntFlag{
			Name:    "journal-redis-db",
			Usage:   "Redis journal database number",
			EnvVars: []string{config.EnvJournalRedisDB},
		},
		&cli.StringFlag{
			Name:    "journal-redis-prefix",
			Usage:   "Prefix for every Redis journal key",
			EnvVars: []string{config.EnvJournalRedisPrefix},
		},
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "zksigner",
		Usage: "Sign zkSync transactions",
		Description: `Derives a zkSync signing key from a seed, an encrypted key file or an
Ethereum account, and signs ChangePubKey, Transfer, Withdraw and ForcedExit
transactions with it.`,
		Version:  "1.0.0",
		Writer:   out,
		Flags:    append(signerFlags(), journalFlags()...),
		Commands: []*cli.Command{
			{
				Name:   "public-key",
				Usage:  "Print the public key and public key hash of the signing key",
				Action: publicKeyCommand,
			},
			{
				Name:      "sign",
				Usage:     "Sign a transaction read from a JSON file",
				ArgsUsage: "<changePubKey|transfer|withdraw|forcedExit>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tx",
						Usage:    "Path to the transaction JSON file",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "decimals",
						Usage: "Decimals of the token amounts in the file",
						Value: 18,
					},
					&cli.BoolFlag{
						Name:  "round",
						Usage: "Round amount and fee down to the closest packable value",
					},
				},
				Action: signCommand,
			},
			{
				Name:  "journal",
				Usage: "Inspect the signature journal",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List every signature recorded for the signing key",
						Action: journalListCommand,
					},
				},
			},
			{
				Name:  "keystore",
				Usage: "Manage encrypted signing key files",
				Subcommands: []*cli.Command{
					{
						Name:  "new",
						Usage: "Encrypt the signing key into a keystore directory",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "dir", Usage: "Keystore directory", Required: true},
							&cli.StringFlag{Name: "password", Usage: "Encryption password", Required: true},
							&cli.BoolFlag{Name: "light", Usage: "Use light scrypt parameters (development only)"},
						},
						Action: keystoreNewCommand,
					},
					{
						Name:  "list",
						Usage: "List the public key hashes stored in a keystore directory",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "dir", Usage: "Keystore directory", Required: true},
						},
						Action: keystoreListCommand,
					},
				},
			},
		},
	}
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return l, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// openJournal returns nil when no journal is configured. Every command is a
// separate process, so an in-memory journal would never see a second record.
func openJournal(c *cli.Context, l *zap.Logger) (persistence.ISignaturePersistence, error) {
	cfg := parseJournalConfig(c)
	if cfg.Type == config.JournalTypeMemory {
		return nil, fmt.Errorf("journal type %q does not outlive a single command, use badger or redis", cfg.Type)
	}
	return journal.NewJournal(cfg, l)
}

func publicKeyCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	km, err := loadKeyManager(c.Context, parseSignerConfig(c), crypto.NewBn254Eddsa(), l)
	if err != nil {
		return err
	}

	return writeJSON(c.App.Writer, map[string]string{
		"publicKey":     km.GetPublicKey(),
		"publicKeyHash": km.GetPublicKeyHash(),
	})
}

type signOutput struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	Transaction any    `json:"transaction"`
}

func signCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one transaction type argument")
	}

	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	in, err := readTxInput(c.String("tx"))
	if err != nil {
		return err
	}
	tx, err := in.toTransaction(c.Args().First(), amountOptions{
		decimals: int32(c.Int("decimals")),
		round:    c.Bool("round"),
	})
	if err != nil {
		return err
	}

	km, err := loadKeyManager(c.Context, parseSignerConfig(c), crypto.NewBn254Eddsa(), l)
	if err != nil {
		return err
	}

	j, err := openJournal(c, l)
	if err != nil {
		return err
	}
	if j != nil {
		defer func() { _ = j.Close() }()
	}

	signer := zkSigner.NewZkSigner(km, j, l)
	signed, err := signer.SignTransaction(tx)
	if err != nil {
		return err
	}

	message, err := transactionEncoder.Encode(signed)
	if err != nil {
		return err
	}

	return writeJSON(c.App.Writer, signOutput{
		Type:        signed.GetType().String(),
		Message:     hex.EncodeToString(message),
		Transaction: signed,
	})
}

func journalListCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	km, err := loadKeyManager(c.Context, parseSignerConfig(c), crypto.NewBn254Eddsa(), l)
	if err != nil {
		return err
	}

	j, err := openJournal(c, l)
	if err != nil {
		return err
	}
	if j == nil {
		return fmt.Errorf("no journal configured, set --journal")
	}
	defer func() { _ = j.Close() }()

	records, err := j.ListSignedTransactions(km.GetPublicKeyHash())
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, records)
}

func keystoreNewCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	km, err := loadKeyManager(c.Context, parseSignerConfig(c), crypto.NewBn254Eddsa(), l)
	if err != nil {
		return err
	}

	ks, err := keystore.NewKeyStore(&keystore.KeyStoreConfig{
		Dir:         c.String("dir"),
		LightScrypt: c.Bool("light"),
	}, l)
	if err != nil {
		return err
	}

	path, err := ks.StoreKey(km, c.String("password"))
	if err != nil {
		return err
	}

	return writeJSON(c.App.Writer, map[string]string{
		"publicKeyHash": km.GetPublicKeyHash(),
		"path":          path,
	})
}

func keystoreListCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	ks, err := keystore.NewKeyStore(&keystore.KeyStoreConfig{Dir: c.String("dir")}, l)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, ks.ListKeys())
}
