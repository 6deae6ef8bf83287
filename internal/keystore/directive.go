// Copyright (c) 2025 ToeiRei
// Keychain - SSH client configuration resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package keystore

import "strings"

// Directive classifies a configuration key. Known directives carry their
// canonical ssh_config(5) spelling; unknown directives keep the key text
// exactly as it appeared in the source.
type Directive struct {
	name  string
	known bool
}

// Frequently used directives.
var (
	DirectiveHost         = knownDirective("Host")
	DirectiveMatch        = knownDirective("Match")
	DirectiveInclude      = knownDirective("Include")
	DirectiveHostName     = knownDirective("HostName")
	DirectivePort         = knownDirective("Port")
	DirectiveUser         = knownDirective("User")
	DirectiveIdentityFile = knownDirective("IdentityFile")
	DirectiveProxyJump    = knownDirective("ProxyJump")
	DirectivePassword     = knownDirective("Password")
)

// List from <https://man7.org/linux/man-pages/man5/ssh_config.5.html>, plus
// Password which some tools keep next to the host block.
var knownNames = []string{
	"Host", "Match", "AddKeysToAgent", "AddressFamily", "BatchMode", "BindAddress",
	"BindInterface", "CanonicalDomains", "CanonicalizeFallbackLocal",
	"CanonicalizeHostname", "CanonicalizeMaxDots", "CanonicalizePermittedCNAMEs",
	"CASignatureAlgorithms", "CertificateFile", "ChannelTimeout", "CheckHostIP",
	"Ciphers", "ClearAllForwardings", "Compression", "ConnectionAttempts",
	"ConnectTimeout", "ControlMaster", "ControlPath", "ControlPersist",
	"DynamicForward", "EnableEscapeCommandline", "EnableSSHKeysign", "EscapeChar",
	"ExitOnForwardFailure", "FingerprintHash", "ForkAfterAuthentication",
	"ForwardAgent", "ForwardX11", "ForwardX11Timeout", "ForwardX11Trusted",
	"GatewayPorts", "GlobalKnownHostsFile", "GSSAPIAuthentication",
	"GSSAPIDelegateCredentials", "HashKnownHosts", "HostbasedAcceptedAlgorithms",
	"HostbasedAuthentication", "HostKeyAlgorithms", "HostKeyAlias", "HostName",
	"IdentitiesOnly", "IdentityAgent", "IdentityFile", "IgnoreUnknown", "Include",
	"IPQoS", "KbdInteractiveAuthentication", "KbdInteractiveDevices",
	"KexAlgorithms", "KnownHostsCommand", "LocalCommand", "LocalForward",
	"LogLevel", "LogVerbose", "MACs", "NoHostAuthenticationForLocalhost",
	"NumberOfPasswordPrompts", "ObscureKeystrokeTiming", "PasswordAuthentication",
	"PermitLocalCommand", "PermitRemoteOpen", "PKCS11Provider", "Port",
	"PreferredAuthentications", "ProxyCommand", "ProxyJump", "ProxyUseFdpass",
	"PubkeyAcceptedAlgorithms", "PubkeyAuthentication", "RekeyLimit",
	"RemoteCommand", "RemoteForward", "RequestTTY", "RequiredRSASize",
	"RevokedHostKeys", "SecurityKeyProvider", "SendEnv", "ServerAliveCountMax",
	"ServerAliveInterval", "SessionType", "SetEnv", "StdinNull",
	"StreamLocalBindMask", "StreamLocalBindUnlink", "StrictHostKeyChecking",
	"SyslogFacility", "TCPKeepAlive", "Tag", "Tunnel", "TunnelDevice",
	"UpdateHostKeys", "User", "UserKnownHostsFile", "VerifyHostKeyDNS",
	"VisualHostKey", "XAuthLocation", "Password",
}

var knownByKey = func() map[string]Directive {
	m := make(map[string]Directive, len(knownNames))
	for _, name := range knownNames {
		m[strings.ToLower(name)] = knownDirective(name)
	}
	return m
}()

func knownDirective(name string) Directive {
	return Directive{name: name, known: true}
}

// UnknownDirective returns the open variant carrying key verbatim.
func UnknownDirective(key string) Directive {
	return Directive{name: key}
}

// DirectiveFromKey matches key case-insensitively against the known
// directives and falls back to UnknownDirective. It never fails.
func DirectiveFromKey(key string) Directive {
	if d, ok := knownByKey[strings.ToLower(key)]; ok {
		return d
	}
	return UnknownDirective(key)
}

// String returns the display name: the canonical spelling for known
// directives and the original key text for unknown ones.
func (d Directive) String() string {
	return d.name
}

// IsUnknown reports whether d is the open Unknown variant.
func (d Directive) IsUnknown() bool {
	return !d.known
}

// KnownDirectives returns the canonical names of every known directive.
func KnownDirectives() []string {
	out := make([]string, len(knownNames))
	copy(out, knownNames)
	return out
}
