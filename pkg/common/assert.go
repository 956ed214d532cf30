// Copyright (c) 2024 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package common

import "github.com/sirupsen/logrus"

// AssertionsFatal makes a failed Assert panic. Production binaries may turn it
// off to keep running with an error log instead.
var AssertionsFatal = true

// Assert reports a programmer error. It returns cond so callers can bail out
// when assertions are not fatal.
func Assert(cond bool, format string, args ...interface{}) bool {
	if cond {
		return true
	}
	if AssertionsFatal {
		logrus.Panicf("assertion failed: "+format, args...)
	}
	logrus.Errorf("assertion failed: "+format, args...)

	return false
}
