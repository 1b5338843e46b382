// Package compat translates this module's ApplicationException to and from
// github.com/apache/thrift's TApplicationException, for services migrating
// off the reference Apache Thrift Go library incrementally.
package compat

import (
	apache "github.com/apache/thrift/lib/go/thrift"

	"github.com/kitex-contrib/thriftcodec/thrift"
)

// ToApache converts e to the equivalent apache/thrift exception.
func ToApache(e *thrift.ApplicationException) apache.TApplicationException {
	return apache.NewTApplicationException(e.TypeID(), e.Msg())
}

// FromApache converts an apache/thrift exception to this module's type.
func FromApache(e apache.TApplicationException) *thrift.ApplicationException {
	return thrift.NewApplicationException(e.TypeId(), e.Error())
}
