package utility

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseTransformTag(t *testing.T) {
	config, err := ParseTransformTag("str_objectid,map=MapID,optional")
	require.NoError(t, err)
	assert.Equal(t, "str_objectid", config.Type)
	assert.Equal(t, "MapID", config.MapTo)
	assert.True(t, config.Optional)
	assert.False(t, config.Required)

	config, err = ParseTransformTag("str_time,format=2006-01-02")
	require.NoError(t, err)
	assert.Equal(t, "str_time", config.Type)
	assert.Equal(t, "2006-01-02", config.Format)

	config, err = ParseTransformTag("")
	require.NoError(t, err)
	assert.Empty(t, config.Type)
}

func TestTransformFieldValueObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	config := &TransformTagConfig{Type: "str_objectid"}
	targetType := reflect.TypeOf(primitive.ObjectID{})

	result, err := TransformFieldValue(oid.Hex(), config, targetType)
	require.NoError(t, err)
	assert.Equal(t, oid, result)

	// Hex không hợp lệ
	_, err = TransformFieldValue("not-a-hex", config, targetType)
	assert.Error(t, err)
}

func TestTransformFieldValueEmptyString(t *testing.T) {
	config := &TransformTagConfig{Type: "str_objectid", Optional: true}
	targetType := reflect.TypeOf(primitive.ObjectID{})

	result, err := TransformFieldValue("", config, targetType)
	require.NoError(t, err)
	assert.Nil(t, result)

	// Required với giá trị rỗng phải báo lỗi
	config = &TransformTagConfig{Type: "str_objectid", Required: true}
	_, err = TransformFieldValue("", config, targetType)
	assert.Error(t, err)
}

func TestTransformFieldValueBoolAndInt64(t *testing.T) {
	boolConfig := &TransformTagConfig{Type: "str_bool"}
	result, err := TransformFieldValue("true", boolConfig, reflect.TypeOf(true))
	require.NoError(t, err)
	assert.Equal(t, true, result)

	intConfig := &TransformTagConfig{Type: "str_int64"}
	result, err = TransformFieldValue("42", intConfig, reflect.TypeOf(int64(0)))
	require.NoError(t, err)
	assert.Equal(t, int64(42), result)
}
