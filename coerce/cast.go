package coerce

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/brimdata/vdb"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

var (
	ErrConversion = errors.New("conversion failed")
	ErrOverflow   = errors.New("value out of range")
)

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05"
	timestampLayout = "2006-01-02 15:04:05.999999999"
)

// Convert folds the constant v of type from into a value of type to.  Go
// representations of constants are: string (string, char, clob, xml,
// json), bool, int8 (byte), int16 (short), int32 (integer), int64 (long),
// *big.Int, float32, float64, decimal.Decimal, time.Time (date, time and
// timestamp), []byte (varbinary) and nil (null).
func Convert(v any, from, to string) (any, error) {
	if v == nil || from == to || to == vdb.Object {
		return v, nil
	}
	out, err := convert(normalize(v), from, to)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %s value %s to %s: %w", from, Format(v, from), to, err)
	}
	return out, nil
}

// normalize widens fixed-size Go values so convert handles fewer cases.
func normalize(v any) any {
	switch v := v.(type) {
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float32:
		return float64(v)
	}
	return v
}

func convert(v any, from, to string) (any, error) {
	switch to {
	case vdb.String, vdb.Clob, vdb.XML, vdb.JSON:
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
		return Format(v, from), nil
	case vdb.Char:
		s := Format(v, from)
		if len([]rune(s)) != 1 {
			return nil, ErrConversion
		}
		return s, nil
	case vdb.Boolean:
		return toBool(v)
	case vdb.Byte:
		return toInt[int8](v)
	case vdb.Short:
		return toInt[int16](v)
	case vdb.Integer:
		return toInt[int32](v)
	case vdb.Long:
		return toInt[int64](v)
	case vdb.BigInteger:
		return toBigInt(v)
	case vdb.Float:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		if math.Abs(f) > math.MaxFloat32 {
			return nil, ErrOverflow
		}
		return float32(f), nil
	case vdb.Double:
		return toFloat(v)
	case vdb.BigDecimal:
		return toDecimal(v)
	case vdb.Date, vdb.Time, vdb.Timestamp:
		return toTime(v, to)
	case vdb.Varbinary, vdb.Blob:
		switch v := v.(type) {
		case []byte:
			return v, nil
		case string:
			return []byte(v), nil
		}
	}
	return nil, ErrConversion
}

func toBool(v any) (any, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case *big.Int:
		return v.Sign() != 0, nil
	case decimal.Decimal:
		return !v.IsZero(), nil
	}
	return nil, ErrConversion
}

func fits[T constraints.Signed](n int64) bool {
	return int64(T(n)) == n
}

func toInt[T constraints.Signed](v any) (any, error) {
	var n int64
	switch v := v.(type) {
	case int64:
		n = v
	case bool:
		if v {
			n = 1
		}
	case string:
		var err error
		n, err = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return nil, ErrOverflow
			}
			return nil, ErrConversion
		}
	case float64:
		if math.IsNaN(v) || v >= math.MaxInt64 || v < math.MinInt64 {
			return nil, ErrOverflow
		}
		n = int64(v)
	case *big.Int:
		if !v.IsInt64() {
			return nil, ErrOverflow
		}
		n = v.Int64()
	case decimal.Decimal:
		bi := v.BigInt()
		if !bi.IsInt64() {
			return nil, ErrOverflow
		}
		n = bi.Int64()
	default:
		return nil, ErrConversion
	}
	if !fits[T](n) {
		return nil, ErrOverflow
	}
	return T(n), nil
}

func toBigInt(v any) (any, error) {
	switch v := v.(type) {
	case int64:
		return big.NewInt(v), nil
	case bool:
		if v {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	case string:
		b, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
		if !ok {
			return nil, ErrConversion
		}
		return b, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrConversion
		}
		b, _ := big.NewFloat(v).Int(nil)
		return b, nil
	case *big.Int:
		return v, nil
	case decimal.Decimal:
		return v.BigInt(), nil
	}
	return nil, ErrConversion
}

func toFloat(v any) (float64, error) {
	switch v := v.(type) {
	case int64:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, ErrConversion
		}
		return f, nil
	case float64:
		return v, nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(v).Float64()
		return f, nil
	case decimal.Decimal:
		f, _ := v.Float64()
		return f, nil
	}
	return 0, ErrConversion
}

func toDecimal(v any) (any, error) {
	switch v := v.(type) {
	case int64:
		return decimal.NewFromInt(v), nil
	case bool:
		if v {
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, ErrConversion
		}
		return d, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrConversion
		}
		return decimal.NewFromFloat(v), nil
	case *big.Int:
		return decimal.NewFromBigInt(v, 0), nil
	case decimal.Decimal:
		return v, nil
	}
	return nil, ErrConversion
}

func toTime(v any, to string) (any, error) {
	var t time.Time
	switch v := v.(type) {
	case time.Time:
		t = v
	case string:
		s := strings.TrimSpace(v)
		var err error
		if t, err = time.Parse(timeLayout, s); err != nil {
			if t, err = dateparse.ParseIn(s, time.UTC); err != nil {
				return nil, ErrConversion
			}
		}
	default:
		return nil, ErrConversion
	}
	switch to {
	case vdb.Date:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	case vdb.Time:
		return time.Date(1970, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
	}
	return t, nil
}

// Format renders a constant of type typ the way it would appear as a
// string value.
func Format(v any, typ string) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int8, int16, int32, int64, int:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case *big.Int:
		return v.String()
	case decimal.Decimal:
		return v.String()
	case time.Time:
		switch typ {
		case vdb.Date:
			return v.Format(dateLayout)
		case vdb.Time:
			return v.Format(timeLayout)
		}
		return v.Format(timestampLayout)
	case []byte:
		return fmt.Sprintf("%X", v)
	}
	return fmt.Sprint(v)
}

// TypeOf returns the built-in type of a Go constant.
func TypeOf(v any) string {
	switch v.(type) {
	case nil:
		return vdb.Null
	case string:
		return vdb.String
	case bool:
		return vdb.Boolean
	case int8:
		return vdb.Byte
	case int16:
		return vdb.Short
	case int32:
		return vdb.Integer
	case int64, int:
		return vdb.Long
	case *big.Int:
		return vdb.BigInteger
	case float32:
		return vdb.Float
	case float64:
		return vdb.Double
	case decimal.Decimal:
		return vdb.BigDecimal
	case time.Time:
		return vdb.Timestamp
	case []byte:
		return vdb.Varbinary
	}
	return vdb.Object
}
