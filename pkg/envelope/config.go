package envelope

type Config struct {
	MasterKey string `env:"SECRETS_MASTER_KEY,required"` // Base64-encoded 32-byte master encryption key
}
