package report

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/i582/cfmt/cmd/cfmt"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/hydradancer/hostctl/config"
)

// Push uploads a session artifact to the named remote host over SFTP.
func Push(host *config.RemoteHost, localPath string) error {
	authMethods, err := getSSHAuthMethods(host.SSHKey, host.Password)
	if err != nil {
		return fmt.Errorf("failed to setup authentication: %w", err)
	}

	hostKeyCallback, err := getHostKeyCallback(host.InsecureSSH)
	if err != nil {
		return fmt.Errorf("failed to setup host key verification (hint: set insecure_ssh for this host to skip verification, NOT RECOMMENDED): %w", err)
	}

	sshConfig := &ssh.ClientConfig{
		User:            host.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         time.Duration(host.Timeout) * time.Second,
	}

	_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] Connecting to %s:%s with timeout %ds...}}::green",
		time.Now().Format(time.Stamp), host.IP, host.Port, host.Timeout))

	conn, err := ssh.Dial("tcp", fmt.Sprintf("%s:%s", host.IP, host.Port), sshConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to %s:%s: %w", host.IP, host.Port, err)
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return fmt.Errorf("failed to create SFTP client: %w", err)
	}
	defer client.Close()

	remoteDir := host.RemotePath
	if remoteDir == "" {
		remoteDir = "."
	}
	remotePath := path.Join(remoteDir, filepath.Base(localPath))

	local, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", localPath, err)
	}
	defer local.Close()

	remote, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("failed to create remote file %s: %w", remotePath, err)
	}
	defer remote.Close()

	n, err := io.Copy(remote, local)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", localPath, err)
	}

	_, _ = cfmt.Println(cfmt.Sprintf("{{[%v] Pushed %s (%d bytes) to %s:%s}}::green",
		time.Now().Format(time.Stamp), filepath.Base(localPath), n, host.Name, remotePath))

	return nil
}

// getHostKeyCallback returns appropriate SSH host key callback based on security settings
// If insecure is true, returns InsecureIgnoreHostKey (NOT RECOMMENDED)
// Otherwise, attempts to use known_hosts file for verification
func getHostKeyCallback(insecure bool) (ssh.HostKeyCallback, error) {
	if insecure {
		// WARNING: This disables host key verification - vulnerable to MITM attacks
		return ssh.InsecureIgnoreHostKey(), nil
	}

	knownHostsPath := filepath.Join(os.Getenv("HOME"), ".ssh", "known_hosts")
	if _, err := os.Stat(knownHostsPath); err == nil {
		callback, err := knownhosts.New(knownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse known_hosts: %w", err)
		}
		return callback, nil
	}

	return nil, fmt.Errorf("no known_hosts file found at %s", knownHostsPath)
}

// getSSHAuthMethods returns SSH authentication methods based on provided credentials
func getSSHAuthMethods(keyPath string, password string) ([]ssh.AuthMethod, error) {
	var authMethods []ssh.AuthMethod

	// Prefer key-based authentication
	if keyPath != "" {
		keyData, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			return nil, fmt.Errorf("failed to parse SSH private key: %w", err)
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}

	// Add password authentication if provided (as fallback or standalone)
	if password != "" {
		authMethods = append(authMethods, ssh.Password(password))
	}

	if len(authMethods) == 0 {
		return nil, fmt.Errorf("no authentication method provided (need SSH key or password)")
	}

	return authMethods, nil
}
