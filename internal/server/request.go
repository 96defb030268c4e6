package server

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// flexID accepts an id sent either as a JSON number or a quoted string.
type flexID snowflake.ID

func (f *flexID) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return err
	}
	*f = flexID(id)
	return nil
}

func (f flexID) ID() snowflake.ID {
	return snowflake.ID(f)
}

// parsePathID reads a positive snowflake id from the named path parameter.
// On failure it aborts with invalid and returns false.
func parsePathID(c *gin.Context, name string, invalid error) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param(name)))
	if err != nil || id <= 0 {
		AbortWithError(c, invalid)
		return 0, false
	}
	return id, true
}

// optionalString drops blank strings so they read as absent.
func optionalString(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}

// looseField keeps a scalar as text whatever its JSON type, so type checks
// can run after the caller's access to the resource is known.
type looseField struct {
	text string
	set  bool
}

func (f *looseField) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		*f = looseField{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = looseField{text: s, set: true}
		return nil
	}
	*f = looseField{text: raw, set: true}
	return nil
}

func (f looseField) Ptr() *string {
	if !f.set {
		return nil
	}
	v := f.text
	return &v
}

// bindLoose decodes an optional JSON body. It reports false only when a body
// was sent and is not a JSON object.
func bindLoose(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	return err == nil || errors.Is(err, io.EOF)
}
