package builtins

import (
	"time"

	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

func dateMillis(this runtime.Value) float64 {
	obj, ok := this.(*runtime.Object)
	if !ok {
		return 0
	}
	n, _ := obj.NativeData.(float64)
	return n
}

func timeFromMillis(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

func installDate(ev *evaluator.Evaluator) {
	proto := runtime.NewObject(ev.ObjectProto)
	proto.SetClass("Date")

	getter := func(name string, fn func(time.Time) float64) {
		method(ev, proto, name, 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
			return runtime.NumberValue(fn(timeFromMillis(dateMillis(this)))), nil
		})
	}
	getter("getFullYear", func(t time.Time) float64 { return float64(t.Year()) })
	getter("getMonth", func(t time.Time) float64 { return float64(t.Month() - 1) })
	getter("getDate", func(t time.Time) float64 { return float64(t.Day()) })
	getter("getDay", func(t time.Time) float64 { return float64(t.Weekday()) })
	getter("getHours", func(t time.Time) float64 { return float64(t.Hour()) })
	getter("getMinutes", func(t time.Time) float64 { return float64(t.Minute()) })
	getter("getSeconds", func(t time.Time) float64 { return float64(t.Second()) })
	getter("getMilliseconds", func(t time.Time) float64 { return float64(t.Nanosecond() / 1e6) })

	method(ev, proto, "getTime", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NumberValue(dateMillis(this)), nil
	})
	method(ev, proto, "valueOf", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NumberValue(dateMillis(this)), nil
	})
	method(ev, proto, "setTime", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		obj := this.(*runtime.Object)
		n := evaluator.ToNumber(argAt(args, 0))
		obj.NativeData = n
		return runtime.NumberValue(n), nil
	})
	method(ev, proto, "toISOString", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString(timeFromMillis(dateMillis(this)).Format("2006-01-02T15:04:05.000Z")), nil
	})
	method(ev, proto, "toString", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString(timeFromMillis(dateMillis(this)).Format(time.RFC1123)), nil
	})
	method(ev, proto, "toJSON", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString(timeFromMillis(dateMillis(this)).Format("2006-01-02T15:04:05.000Z")), nil
	})

	ctor := ev.NewNativeFunction("Date", 7, func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		if newTarget == nil {
			return runtime.NewString(time.Now().UTC().Format(time.RFC1123)), nil
		}
		obj := this.(*runtime.Object)
		obj.SetClass("Date")
		switch len(args) {
		case 0:
			obj.NativeData = float64(time.Now().UnixMilli())
		case 1:
			if s, ok := args[0].(runtime.StringValue); ok {
				t, err := time.Parse(time.RFC3339, s.String())
				if err != nil {
					obj.NativeData = float64(0)
				} else {
					obj.NativeData = float64(t.UnixMilli())
				}
			} else {
				obj.NativeData = evaluator.ToNumber(args[0])
			}
		default:
			year := int(evaluator.ToNumber(args[0]))
			month := time.Month(1)
			if len(args) > 1 {
				month = time.Month(int(evaluator.ToNumber(args[1])) + 1)
			}
			day := 1
			if len(args) > 2 {
				day = int(evaluator.ToNumber(args[2]))
			}
			hour, min, sec, ms := 0, 0, 0, 0
			if len(args) > 3 {
				hour = int(evaluator.ToNumber(args[3]))
			}
			if len(args) > 4 {
				min = int(evaluator.ToNumber(args[4]))
			}
			if len(args) > 5 {
				sec = int(evaluator.ToNumber(args[5]))
			}
			if len(args) > 6 {
				ms = int(evaluator.ToNumber(args[6]))
			}
			t := time.Date(year, month, day, hour, min, sec, ms*1e6, time.UTC)
			obj.NativeData = float64(t.UnixMilli())
		}
		return obj, nil
	})
	ctor.Construct = ctor.Call
	ctor.SetOwnHidden("prototype", proto)
	proto.SetOwnHidden("constructor", ctor)
	method(ev, ctor, "now", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NumberValue(float64(time.Now().UnixMilli())), nil
	})

	ev.DateProto = proto
	ev.Global.DeclareVar("Date", ctor)
}
