package client_test

import (
	"os"
	"path/filepath"

	"github.com/dataservice/chat2query/internal/client"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("client config", func() {
	var (
		dir     string
		service client.Service
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		service = client.Service{
			Server:      "https://data.example.com",
			Credentials: client.Credentials{PublicKey: "public", PrivateKey: "private"},
			ClusterID:   "10000",
			Database:    "sp500insight",
		}
	})

	It("writes a config file that can be read back", func() {
		filename := filepath.Join(dir, "nested", "client.yaml")
		Expect(client.WriteConfig(filename, service)).To(Succeed())

		info, err := os.Stat(filename)
		Expect(err).To(BeNil())
		Expect(info.Mode().Perm()).To(Equal(os.FileMode(0600)))

		config, err := client.ParseConfigFile(filename)
		Expect(err).To(BeNil())
		Expect(config.Service).To(Equal(service))
		Expect(config.DataAPI).To(BeNil())
	})

	It("keeps the dataApi section when the service is rewritten", func() {
		filename := filepath.Join(dir, "client.yaml")
		contents := `
service:
  server: https://old.example.com
  publicKey: old
  privateKey: old
  clusterId: "1"
  database: old
dataApi:
  server: https://gateway.example.com/v1beta/app/dataapp-abc/endpoint
  publicKey: dpub
  privateKey: dpriv
`
		Expect(os.WriteFile(filename, []byte(contents), 0600)).To(Succeed())
		Expect(client.WriteConfig(filename, service)).To(Succeed())

		config, err := client.ParseConfigFile(filename)
		Expect(err).To(BeNil())
		Expect(config.Service).To(Equal(service))
		Expect(config.DataAPI).NotTo(BeNil())
		Expect(config.DataAPI.PublicKey).To(Equal("dpub"))
	})

	It("reports every missing field at once", func() {
		config := client.NewDefault()
		err := config.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.Error()).To(ContainSubstring("service: no server found"))
		Expect(err.Error()).To(ContainSubstring("service: no public key found"))
		Expect(err.Error()).To(ContainSubstring("service: no private key found"))
		Expect(err.Error()).To(ContainSubstring("service: no cluster id found"))
		Expect(err.Error()).To(ContainSubstring("service: no database found"))
	})

	It("rejects a server without hostname", func() {
		service.Server = "not-a-url"
		config := &client.Config{Service: service}
		Expect(config.Validate()).To(MatchError(ContainSubstring("no hostname")))
	})

	It("refuses to write an invalid config", func() {
		filename := filepath.Join(dir, "client.yaml")
		service.Database = ""
		Expect(client.WriteConfig(filename, service)).NotTo(Succeed())
		_, err := os.Stat(filename)
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("honours the config path from the environment", func() {
		GinkgoT().Setenv(client.ConfigPathEnvKey, "/tmp/custom/../client.yaml")
		Expect(client.DefaultClientConfigPath()).To(Equal("/tmp/client.yaml"))
	})

	It("requires a dataApi section to build a Data API client", func() {
		_, err := client.NewDataAPIFromConfig(&client.Config{Service: service})
		Expect(err).NotTo(BeNil())
	})

	It("compares and copies configs", func() {
		config := &client.Config{Service: service, DataAPI: &client.DataAPIService{Server: "https://gw.example.com"}}
		copied := config.DeepCopy()
		Expect(copied.Equal(config)).To(BeTrue())

		copied.DataAPI.Server = "https://other.example.com"
		Expect(copied.Equal(config)).To(BeFalse())
		Expect(config.DataAPI.Server).To(Equal("https://gw.example.com"))
	})
})
