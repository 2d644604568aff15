package credentials

// Credentials represents the stored access tokens in credentials.toml.
type Credentials struct {
	Version   int                           `toml:"version"`
	Instances map[string]InstanceCredential `toml:"instances"`
}

// InstanceCredential holds the access token for one instance host.
type InstanceCredential struct {
	AccessToken string `toml:"access_token"`
}
