package config

import "strings"

// PANCHAYAT_SECURITY_JWTSECRET maps to security.jwtsecret.
var envKeyReplacer = strings.NewReplacer(".", "_")
