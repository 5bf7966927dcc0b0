// Copyright (c) 2012-2017 The Revel Framework Authors, All rights reserved.
// Revel Framework source code and usage is governed by a MIT style
// license that can be found in the LICENSE file.

package lazycache

const (
	// Version current lazycache version
	Version = "0.1.0"

	// MinimumGoVersion minimum required Go version for lazycache
	MinimumGoVersion = ">= go1.17"
)
