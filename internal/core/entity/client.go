package entity

import (
	"context"
	"errors"
	"fmt"
)

// PutBehaviour installs b on ref with the attribute produced by b.Init(args).
// A second behaviour for the same key is rejected with ErrAlreadyRegistered;
// remove the first one to replace it.
func PutBehaviour(ctx context.Context, ref *Ref, b Behaviour, args any) error {
	if b == nil {
		return fmt.Errorf("%w: nil", ErrInvalidBehaviour)
	}
	_, err := request(ctx, ref, envelope{kind: kindPut, key: b.Key(), behaviour: b, payload: args})
	return err
}

// RemoveBehaviour uninstalls the behaviour for key together with its attribute.
func RemoveBehaviour(ctx context.Context, ref *Ref, key Key) error {
	_, err := request(ctx, ref, envelope{kind: kindRemove, key: key})
	return err
}

// HasBehaviour reports whether ref currently has a behaviour for key.
func HasBehaviour(ctx context.Context, ref *Ref, key Key) (bool, error) {
	v, err := request(ctx, ref, envelope{kind: kindHas, key: key})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// CallBehaviour sends req to the behaviour for key and waits for its reply.
//
// If ctx has no deadline the entity's call timeout applies. A timed out call
// is not withdrawn: the entity still processes it and commits its effects.
func CallBehaviour(ctx context.Context, ref *Ref, key Key, req any) (any, error) {
	return request(ctx, ref, envelope{kind: kindCall, key: key, payload: req})
}

// Cast delivers payload to the behaviour for key without waiting. Delivery is
// best effort: nothing is reported if ref is dead or lacks the behaviour.
func Cast(ref *Ref, key Key, payload any) {
	if ref == nil {
		return
	}
	ref.mailbox.push(envelope{kind: kindEvent, key: key, payload: payload})
}

func request(ctx context.Context, ref *Ref, env envelope) (any, error) {
	if ref == nil {
		return nil, ErrUnreachable
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ref.callTimeout)
		defer cancel()
	}

	env.reply = make(chan result, 1)
	if !ref.mailbox.push(env) {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, ref)
	}

	select {
	case res := <-env.reply:
		return res.value, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s on %s", ErrTimeout, env.key, ref)
		}
		return nil, ctx.Err()
	}
}
